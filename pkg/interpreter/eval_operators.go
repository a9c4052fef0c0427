package interpreter

import (
	"context"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// evalLogical implements And/Or short-circuit with CEL's error-absorption
// rule (spec §4.3, §8 "short-circuit absorption"): a deciding value on
// either side wins even if the other side errors or is never evaluated.
// This replaces the teacher's plain-truthy evalAnd/evalOr
// (pkg/evaluator/eval_operators.go), which short-circuits on JSONata
// truthiness and never needs to reconcile an error against the opposite
// operand.
func (in *Interpreter) evalLogical(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	left, lerr := in.eval(ctx, n.LHS, cctx)

	switch n.LogicalOp {
	case ast.LogicalAnd:
		if lerr == nil && left.Kind() == value.KindBool && !left.AsBool() {
			return value.Bool(false), nil
		}
		right, rerr := in.eval(ctx, n.RHS, cctx)
		if rerr == nil && right.Kind() == value.KindBool && !right.AsBool() {
			return value.Bool(false), nil
		}
		if lerr != nil {
			return value.Value{}, lerr
		}
		if rerr != nil {
			return value.Value{}, rerr
		}
		if left.Kind() != value.KindBool || right.Kind() != value.KindBool {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "&&: non-bool operand").WithNode(n.ID)
		}
		return value.Bool(true), nil

	case ast.LogicalOr:
		if lerr == nil && left.Kind() == value.KindBool && left.AsBool() {
			return value.Bool(true), nil
		}
		right, rerr := in.eval(ctx, n.RHS, cctx)
		if rerr == nil && right.Kind() == value.KindBool && right.AsBool() {
			return value.Bool(true), nil
		}
		if lerr != nil {
			return value.Value{}, lerr
		}
		if rerr != nil {
			return value.Value{}, rerr
		}
		if left.Kind() != value.KindBool || right.Kind() != value.KindBool {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "||: non-bool operand").WithNode(n.ID)
		}
		return value.Bool(false), nil

	default:
		return value.Value{}, cerrors.Newf(cerrors.InvalidArgument, "unknown logical operator").WithNode(n.ID)
	}
}

// evalConditional implements the ternary conditional (spec §4.3): the
// non-selected branch is never evaluated.
func (in *Interpreter) evalConditional(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	test, err := in.eval(ctx, n.Test, cctx)
	if err != nil {
		return value.Value{}, err
	}
	if test.Kind() != value.KindBool {
		return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "conditional test must be bool, got %s", test.Kind()).WithNode(n.ID)
	}
	if test.AsBool() {
		return in.eval(ctx, n.Then, cctx)
	}
	return in.eval(ctx, n.Else, cctx)
}

// evalUnary implements Not and Neg (spec §4.3).
func (in *Interpreter) evalUnary(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	operand, err := in.eval(ctx, n.Operand, cctx)
	if err != nil {
		return value.Value{}, err
	}

	switch n.UnaryOp {
	case ast.UnaryNot:
		if operand.Kind() != value.KindBool {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "!: non-bool operand %s", operand.Kind()).WithNode(n.ID)
		}
		return value.Bool(!operand.AsBool()), nil
	case ast.UnaryNeg:
		v, err := value.Negate(operand)
		if err != nil {
			return value.Value{}, attachNode(err, n.ID)
		}
		return v, nil
	default:
		return value.Value{}, cerrors.Newf(cerrors.InvalidArgument, "unknown unary operator").WithNode(n.ID)
	}
}

// notStrictlyFalse implements the internal @not_strictly_false operator
// (spec §4.3, used only by comprehension loop conditions per §4.5): it
// returns true unless the evaluated value is the Bool false, absorbing any
// non-bool result (including an error) as "not false" so that a failing
// loop_cond does not itself abort a comprehension that is about to
// terminate on a later false anyway.
func notStrictlyFalse(v value.Value, err error) bool {
	if err != nil {
		return true
	}
	return v.Kind() != value.KindBool || v.AsBool()
}

func attachNode(err error, id int) error {
	if cerr, ok := err.(*cerrors.Error); ok {
		return cerr.WithNode(id)
	}
	return err
}
