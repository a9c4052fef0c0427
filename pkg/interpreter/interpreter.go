// Package interpreter implements the CEL tree-walking evaluator (spec §4.3
// -§4.6): recursive descent over an *ast.Program against a *celctx.Context,
// producing a value.Value or a typed *cerrors.Error.
//
// It is grounded on the teacher's pkg/evaluator package: a central evalNode
// dispatch switch keyed on node kind, a context-carried recursion-depth
// counter, and eager pre-evaluation of call arguments before dispatch —
// generalized throughout from JSONata's "everything is a path or a
// function call over nil-safe interface{}" model to CEL's typed short-
// circuit/selection/overload-resolution rules.
package interpreter

import (
	"context"
	"log/slog"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// Options configures an Interpreter, following the teacher's EvalOptions
// functional-options pattern (pkg/evaluator/evaluator.go).
type Options struct {
	// MaxRecursionDepth overrides the Context's configured depth limit when
	// positive; zero leaves whatever limit the Context already carries.
	MaxRecursionDepth int
	Debug             bool
	Logger            *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithMaxRecursionDepth overrides the evaluation depth limit.
func WithMaxRecursionDepth(n int) Option {
	return func(o *Options) { o.MaxRecursionDepth = n }
}

// WithDebug enables per-node debug logging.
func WithDebug(enabled bool) Option {
	return func(o *Options) { o.Debug = enabled }
}

// WithLogger sets a custom structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Interpreter evaluates compiled programs. It is stateless beyond its
// configuration and safe for concurrent use across distinct Contexts (spec
// §5: a Context is single-owner, but the Interpreter itself holds none).
type Interpreter struct {
	opts   Options
	logger *slog.Logger
}

// New builds an Interpreter with the given options.
func New(opts ...Option) *Interpreter {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Interpreter{opts: o, logger: o.Logger}
}

// Execute runs prog to completion against cctx (spec §6.2 Program.execute).
// It honours ctx cancellation at every node visit (spec mentions no ambient
// cancellation contract, but the teacher's ctx.Done() check costs nothing
// and composes with a host-imposed context.WithTimeout/WithCancel around
// Execute).
func (in *Interpreter) Execute(ctx context.Context, prog *ast.Program, cctx *celctx.Context) (value.Value, error) {
	if in.opts.MaxRecursionDepth > 0 {
		cctx.SetMaxRecursionDepth(in.opts.MaxRecursionDepth)
	}
	return in.eval(ctx, prog.Root(), cctx)
}

// Eval evaluates a single AST node against cctx. It implements
// celctx.Evaluator, giving a LazyImpl overload the same recursive-eval
// capability the interpreter itself uses for comprehensions and the
// short-circuiting logical operators.
func (in *Interpreter) Eval(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	return in.eval(ctx, n, cctx)
}

// eval is the central recursive dispatcher (spec §4.3).
func (in *Interpreter) eval(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	select {
	case <-ctx.Done():
		return value.Value{}, ctx.Err()
	default:
	}

	if n == nil {
		return value.Null, nil
	}

	if err := cctx.Enter(); err != nil {
		return value.Value{}, err.(*cerrors.Error).WithNode(n.ID)
	}
	defer cctx.Exit()

	if in.opts.Debug {
		in.logger.Debug("evaluating node", "kind", n.Kind, "id", n.ID)
	}

	switch n.Kind {
	case ast.KindLiteral:
		return in.evalLiteral(n)
	case ast.KindIdent:
		return in.evalIdent(n, cctx)
	case ast.KindSelect:
		return in.evalSelect(ctx, n, cctx)
	case ast.KindIndex:
		return in.evalIndex(ctx, n, cctx)
	case ast.KindCall:
		return in.evalCall(ctx, n, cctx)
	case ast.KindList:
		return in.evalList(ctx, n, cctx)
	case ast.KindMap:
		return in.evalMap(ctx, n, cctx)
	case ast.KindComprehension:
		return in.evalComprehension(ctx, n, cctx)
	case ast.KindConditional:
		return in.evalConditional(ctx, n, cctx)
	case ast.KindLogical:
		return in.evalLogical(ctx, n, cctx)
	case ast.KindUnary:
		return in.evalUnary(ctx, n, cctx)
	default:
		return value.Value{}, cerrors.Newf(cerrors.InvalidArgument, "unsupported node kind %s", n.Kind).WithNode(n.ID)
	}
}

// evalLiteral returns the embedded literal (spec §4.3 "Literal: return the
// literal value").
func (in *Interpreter) evalLiteral(n *ast.Node) (value.Value, error) {
	if v, ok := n.Literal.(value.Value); ok {
		return v, nil
	}
	return value.Null, nil
}

// evalIdent resolves an identifier against the context chain (spec §4.3
// "Ident(n): ctx.resolve(n); if absent, NoSuchVariable").
func (in *Interpreter) evalIdent(n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	v, err := cctx.Resolve(n.Name)
	if err != nil {
		if cerr, ok := err.(*cerrors.Error); ok {
			return value.Value{}, cerr.WithNode(n.ID)
		}
		return value.Value{}, err
	}
	return v, nil
}
