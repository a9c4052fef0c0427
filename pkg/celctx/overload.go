package celctx

import (
	"context"
	"strings"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// Impl is the implementation of one function overload (spec §4.6). It
// receives already-evaluated arguments.
type Impl func(ctx context.Context, args []value.Value) (value.Value, error)

// Evaluator is the handle a LazyImpl uses to evaluate an argument node on
// its own terms — selectively, repeatedly, or not at all — the same
// capability the interpreter's own `||`/`&&` and comprehension machinery
// has over its operands (spec §4.6's "lower-level protocol").
type Evaluator interface {
	Eval(ctx context.Context, node *ast.Node, cctx *Context) (value.Value, error)
}

// LazyImpl is the unevaluated-argument counterpart to Impl: it receives the
// raw argument AST nodes (the receiver, if any, first) plus an Evaluator,
// and decides for itself which nodes to evaluate and in what order. This is
// the mechanism a host function uses to replicate `||`/`&&`-style
// absorption (e.g. short-circuiting, or tolerating an error from an operand
// it never needed) instead of always forcing eager evaluation of every
// argument.
type LazyImpl func(ctx context.Context, args []*ast.Node, cctx *Context, eval Evaluator) (value.Value, error)

// Overload is one member of a function's overload set: a fixed (or
// variadic) argument-type signature plus its implementation, mirroring the
// teacher's FunctionDef{MinArgs,MaxArgs,Impl} but keyed on runtime Kind
// rather than arity alone, since CEL dispatches overloads (e.g. `+` over
// Int/Int vs String/String) by argument type, not merely by count.
type Overload struct {
	// ArgTypes lists the expected Kind of each fixed argument. KindDynamic
	// in any position matches any Kind at that position. For a Lazy
	// overload, only len(ArgTypes) (the arity) is consulted, since no
	// runtime Kind is available before the overload itself evaluates
	// anything.
	ArgTypes []value.Kind
	// Variadic, if true, allows any number of trailing arguments beyond
	// len(ArgTypes), each of which must match the last entry of ArgTypes
	// (or be unconstrained if ArgTypes is empty).
	Variadic bool
	// Impl is used when Lazy is nil. Exactly one of Impl/Lazy should be set.
	Impl Impl
	// Lazy, when set, takes over dispatch entirely: evalCall skips eager
	// argument evaluation and invokes Lazy with the raw argument nodes.
	Lazy LazyImpl
}

// arity reports the minimum argument count this overload accepts.
func (o *Overload) arity() int { return len(o.ArgTypes) }

// matches reports whether args is compatible with this overload's shape.
func (o *Overload) matches(args []value.Value) bool {
	if o.Variadic {
		if len(args) < len(o.ArgTypes) {
			return false
		}
	} else if len(args) != len(o.ArgTypes) {
		return false
	}
	for i, want := range o.ArgTypes {
		if want != value.KindDynamic && args[i].Kind() != want {
			return false
		}
	}
	if o.Variadic && len(o.ArgTypes) > 0 {
		last := o.ArgTypes[len(o.ArgTypes)-1]
		for i := len(o.ArgTypes); i < len(args); i++ {
			if last != value.KindDynamic && args[i].Kind() != last {
				return false
			}
		}
	}
	return true
}

// OverloadSet collects every Overload registered under one function name
// (spec §4.6: "a function name may resolve to one of several overloads,
// selected by the runtime types of its arguments"), mirroring the teacher's
// per-name *FunctionDef entry generalized to a slice since CEL, unlike
// JSONata, allows genuinely different implementations under the same name.
type OverloadSet struct {
	Name      string
	Overloads []*Overload
}

// ResolveLazy picks a Lazy overload whose arity accepts argc unevaluated
// arguments, in registration order. Called before any argument has been
// evaluated, so only arity (not runtime Kind) can discriminate; a function
// name that mixes Lazy and eager overloads should give its Lazy entries a
// distinct arity so this stays unambiguous.
func (s *OverloadSet) ResolveLazy(argc int) (*Overload, bool) {
	for _, o := range s.Overloads {
		if o.Lazy == nil {
			continue
		}
		if o.Variadic {
			if argc >= len(o.ArgTypes) {
				return o, true
			}
		} else if argc == len(o.ArgTypes) {
			return o, true
		}
	}
	return nil, false
}

// Resolve picks the overload matching args by arity and argument Kind, in
// registration order; the first match wins. No match reports NoSuchOverload
// (spec §4.6, §8 "unresolved overload").
func (s *OverloadSet) Resolve(args []value.Value) (*Overload, error) {
	for _, o := range s.Overloads {
		if o.Lazy != nil {
			continue
		}
		if o.matches(args) {
			return o, nil
		}
	}
	var sig strings.Builder
	for i, a := range args {
		if i > 0 {
			sig.WriteString(", ")
		}
		sig.WriteString(a.Kind().String())
	}
	return nil, cerrors.Newf(cerrors.NoSuchOverload, "%s(%s): no matching overload", s.Name, sig.String())
}
