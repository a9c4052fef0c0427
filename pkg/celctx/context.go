// Package celctx implements the nestable name-resolution environment of
// spec §3.6/§4.2: a stack of scopes binding identifiers to values and
// functions to overload sets, with recursion-depth tracking.
//
// It is grounded on the teacher's pkg/evaluator/context.go (EvalContext):
// a parent-pointer scope chain with a per-scope bindings map and a depth
// counter, generalized with a per-scope function-overload table (CEL, unlike
// JSONata, resolves function calls against the Context itself rather than a
// single global registry plus lambda closures).
package celctx

import (
	"fmt"

	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// Context is a stack of scopes (spec §3.6). A Context is single-owner at
// evaluation time (spec §4.2): concurrent reads of the same *Context from
// multiple goroutines are not supported — callers wanting parallel
// evaluation clone via NewInnerScope from a shared immutable root, or build
// one Context per worker.
type Context struct {
	parent   *Context
	vars     map[string]binding
	fns      map[string]*OverloadSet
	depth    int
	maxDepth int
}

// binding is anything a variable name can resolve to: either an already
// computed value, or a deferred producer evaluated lazily on first
// resolution (spec §3.6 "a mapping from identifier name to a value or a
// deferred value producer"). Exactly one of value/producer is set.
type binding struct {
	value    value.Value
	producer func() (value.Value, error)
}

// DefaultMaxRecursionDepth is used when New is called without an explicit
// limit; it matches the order of magnitude of the teacher's
// EvalOptions.MaxDepth default (10000), scaled down because CEL's depth
// counts language constructs (AST nodes on the evaluator stack), typically
// shallower per construct than a JSONata path chain.
const DefaultMaxRecursionDepth = 2000

// New creates a root Context with no parent.
func New() *Context {
	return &Context{
		vars:     make(map[string]binding),
		fns:      make(map[string]*OverloadSet),
		maxDepth: DefaultMaxRecursionDepth,
	}
}

// NewInnerScope creates a child scope whose lifetime is bounded by the
// caller (spec §4.2); it shadows but never mutates the parent.
func (c *Context) NewInnerScope() *Context {
	return &Context{
		parent:   c,
		vars:     make(map[string]binding),
		fns:      make(map[string]*OverloadSet),
		depth:    c.depth,
		maxDepth: c.maxDepth,
	}
}

// AddVariable binds a value in the current scope.
func (c *Context) AddVariable(name string, v value.Value) {
	c.vars[name] = binding{value: v}
}

// AddVariableProducer binds a lazily-evaluated value in the current scope.
func (c *Context) AddVariableProducer(name string, producer func() (value.Value, error)) {
	c.vars[name] = binding{producer: producer}
}

// Resolve looks up name, walking the scope stack innermost to outermost; the
// first match wins (spec §3.6).
func (c *Context) Resolve(name string) (value.Value, error) {
	for s := c; s != nil; s = s.parent {
		if b, ok := s.vars[name]; ok {
			if b.producer != nil {
				return b.producer()
			}
			return b.value, nil
		}
	}
	return value.Value{}, cerrors.Newf(cerrors.NoSuchVariable, "undeclared reference to %q", name)
}

// AddFunction registers a host function under name; multiple registrations
// under the same name form an overload set disambiguated by arity and
// runtime argument types at call time (spec §4.2, §4.6).
func (c *Context) AddFunction(name string, fn *Overload) {
	set, ok := c.fns[name]
	if !ok {
		set = &OverloadSet{Name: name}
		c.fns[name] = set
	}
	set.Overloads = append(set.Overloads, fn)
}

// ResolveFunction walks the scope stack for the named overload set,
// innermost first. Overload sets are not merged across scopes: a function
// name bound in an inner scope fully shadows any outer registration of the
// same name (matching variable shadowing semantics).
func (c *Context) ResolveFunction(name string) (*OverloadSet, bool) {
	for s := c; s != nil; s = s.parent {
		if set, ok := s.fns[name]; ok {
			return set, true
		}
	}
	return nil, false
}

// MaxRecursionDepth returns the configured limit.
func (c *Context) MaxRecursionDepth() int { return c.maxDepth }

// SetMaxRecursionDepth overrides the limit on c. NewInnerScope copies the
// limit by value, so the new limit applies to c and to scopes derived from
// c afterwards; scopes already derived keep the limit they were created
// with. Set it on the root before evaluation begins.
func (c *Context) SetMaxRecursionDepth(n int) { c.maxDepth = n }

// Enter increments the depth counter for this evaluation tree and reports
// MaxRecursionDepth if the configured limit is exceeded (spec §4.2: depth
// counts language constructs, i.e. AST nodes pushed on the evaluator stack,
// not implementation call-stack recursion). The interpreter calls Enter once
// per evalNode invocation and Exit on return, mirroring the teacher's
// context-carried recursion counter in evaluator.withNewRecurseDepthPtr.
func (c *Context) Enter() error {
	c.depth++
	if c.maxDepth > 0 && c.depth > c.maxDepth {
		return cerrors.Newf(cerrors.MaxRecursionDepth, "max recursion depth %d exceeded", c.maxDepth)
	}
	return nil
}

// Exit decrements the depth counter on return from an evalNode call.
func (c *Context) Exit() { c.depth-- }

// Depth returns the current recursion depth.
func (c *Context) Depth() int { return c.depth }

// String renders a short diagnostic summary, mirroring the teacher's
// EvalContext.String().
func (c *Context) String() string {
	return fmt.Sprintf("Context{depth=%d, vars=%d, fns=%d}", c.depth, len(c.vars), len(c.fns))
}
