// Package gocel provides a Go implementation of the core of the Common
// Expression Language (CEL): a dynamically-typed, side-effect-free,
// non-Turing-complete expression language designed to be embedded in host
// applications and evaluated quickly and safely against untrusted input.
//
// gocel is built around the same shape as the JSONata engine it is
// descended from: a hand-written recursive-descent parser producing an
// arena-allocated AST, a tree-walking evaluator over a nestable context/
// scope chain, a function registry resolved by runtime argument type
// rather than JSONata's arity/signature strings, and an LRU cache for
// repeatedly-compiled expressions.
//
// # Quick Start
//
//	prog, err := gocel.Compile(`x.size() > 0 && x.startsWith("a")`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cctx := gocel.NewStandardContext(stdlib.AllFeatures())
//	cctx.AddVariable("x", value.String("abc"))
//
//	result, err := gocel.Execute(context.Background(), prog, cctx)
//
// # More Information
//
// For detailed documentation, see:
//   - Value model: github.com/sandrolain/gocel/pkg/value
//   - Parser: github.com/sandrolain/gocel/pkg/parser
//   - Interpreter: github.com/sandrolain/gocel/pkg/interpreter
//   - Standard library: github.com/sandrolain/gocel/pkg/stdlib
package gocel

import (
	"context"
	"fmt"
	"time"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/cache"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/interpreter"
	"github.com/sandrolain/gocel/pkg/parser"
	"github.com/sandrolain/gocel/pkg/stdlib"
	"github.com/sandrolain/gocel/pkg/value"
)

// Version returns the current version of gocel.
func Version() string {
	return "v0.1.0-dev"
}

// Compile parses a CEL expression into a compiled Program for repeated
// evaluation. The compiled Program is immutable and safe to evaluate
// concurrently against distinct Contexts.
//
// Example:
//
//	prog, err := gocel.Compile(`x.size() > 0`)
func Compile(source string, opts ...parser.CompileOption) (*ast.Program, error) {
	return parser.NewParser(source, opts...).Parse()
}

// MustCompile is like Compile but panics if the expression cannot be
// compiled. It simplifies safe initialization of package-level variables.
func MustCompile(source string) *ast.Program {
	prog, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("gocel: Compile(%q): %v", source, err))
	}
	return prog
}

// NewStandardContext returns a root Context with pkg/stdlib's built-ins
// registered under the given feature set, ready for variables to be added
// via AddVariable before Execute.
func NewStandardContext(features stdlib.Features) *celctx.Context {
	cctx := celctx.New()
	stdlib.Register(cctx, features)
	return cctx
}

// Options configures Eval/Execute, following the teacher's functional-
// options pattern (pkg/evaluator.EvalOptions).
type Options struct {
	interpOpts []interpreter.Option
	cache      *cache.Cache
	timeout    time.Duration
}

// Option configures Options.
type Option func(*Options)

// WithMaxRecursionDepth overrides the evaluation depth limit.
func WithMaxRecursionDepth(n int) Option {
	return func(o *Options) { o.interpOpts = append(o.interpOpts, interpreter.WithMaxRecursionDepth(n)) }
}

// WithDebug enables per-node debug logging.
func WithDebug(enabled bool) Option {
	return func(o *Options) { o.interpOpts = append(o.interpOpts, interpreter.WithDebug(enabled)) }
}

// WithCache routes Eval's compilation step through c, so repeated calls
// with the same source string skip re-parsing.
func WithCache(c *cache.Cache) Option {
	return func(o *Options) { o.cache = c }
}

// WithTimeout bounds Eval's evaluation with a context.WithTimeout derived
// from the context passed to Eval.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.timeout = d }
}

// Execute runs prog to completion against cctx.
func Execute(ctx context.Context, prog *ast.Program, cctx *celctx.Context, opts ...Option) (value.Value, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return interpreter.New(o.interpOpts...).Execute(ctx, prog, cctx)
}

// Eval compiles source (through Options.cache when configured) and
// evaluates it against cctx in one call. For repeated evaluation of the
// same expression, prefer Compile followed by Execute.
func Eval(ctx context.Context, source string, cctx *celctx.Context, opts ...Option) (value.Value, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	compile := func() (*ast.Program, error) { return Compile(source) }
	var prog *ast.Program
	var err error
	if o.cache != nil {
		prog, err = o.cache.GetOrCompile(source, compile)
	} else {
		prog, err = compile()
	}
	if err != nil {
		return value.Value{}, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	return interpreter.New(o.interpOpts...).Execute(ctx, prog, cctx)
}
