package interpreter

import (
	"context"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// evalCall implements the function dispatcher (spec §4.6): free functions
// and receiver-style calls both resolve an overload set from the Context by
// name, evaluate arguments eagerly (unless a Lazy overload matches the
// arity, see below), and select the first overload whose declared argument
// kinds accept the supplied arguments. This mirrors the
// teacher's evalFunction (pkg/evaluator/eval_impl.go): evaluate every
// argument node up front, then look up and invoke the callee — generalized
// from a single FunctionDef per name to celctx.OverloadSet's type-
// discriminated dispatch, since CEL (unlike JSONata) genuinely overloads
// operators and built-ins by argument type.
func (in *Interpreter) evalCall(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	// An unregistered name is reported as NoSuchOverload, not NoSuchFunction:
	// spec §4.7/§6.3 require this for a feature-gated built-in whose
	// feature is off ("absent feature yields NoSuchOverload"), and nothing
	// at this call site can tell that apart from an ordinary undeclared
	// name, so both go through the same error kind.
	set, ok := cctx.ResolveFunction(n.Function)
	if !ok {
		return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "undeclared function: %s", n.Function).WithNode(n.ID)
	}

	argNodes := n.Args
	if n.Target != nil {
		argNodes = make([]*ast.Node, 0, len(n.Args)+1)
		argNodes = append(argNodes, n.Target)
		argNodes = append(argNodes, n.Args...)
	}

	// Lazy-arg call-site bridge (spec §4.6): a host function may decline
	// eager argument evaluation and instead receive the raw argument nodes
	// plus this Interpreter as an Evaluator, evaluating selectively. This
	// is resolved by arity alone, before anything has been evaluated.
	if overload, ok := set.ResolveLazy(len(argNodes)); ok {
		result, err := overload.Lazy(ctx, argNodes, cctx, in)
		return wrapCallResult(result, err, n.ID)
	}

	args := make([]value.Value, 0, len(argNodes))
	for _, a := range argNodes {
		v, err := in.eval(ctx, a, cctx)
		if err != nil {
			return value.Value{}, err
		}
		args = append(args, v)
	}

	overload, err := set.Resolve(args)
	if err != nil {
		return value.Value{}, attachNode(err, n.ID)
	}

	result, err := overload.Impl(ctx, args)
	return wrapCallResult(result, err, n.ID)
}

// wrapCallResult attaches the call site's node ID to an overload's error,
// wrapping a plain (non-*cerrors.Error) error as HostFunctionError.
func wrapCallResult(result value.Value, err error, nodeID int) (value.Value, error) {
	if err == nil {
		return result, nil
	}
	if cerr, ok := err.(*cerrors.Error); ok {
		return value.Value{}, cerr.WithNode(nodeID)
	}
	return value.Value{}, cerrors.New(cerrors.HostFunctionError, err.Error()).WithCause(err).WithNode(nodeID)
}
