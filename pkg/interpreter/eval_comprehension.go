package interpreter

import (
	"context"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// evalComprehension implements the unified comprehension engine behind
// all/exists/exists_one/map/filter (spec §4.5). It is grounded on the
// teacher's fn_hof.go (map/filter/reduce all share one iteration skeleton
// over a []interface{} with a child EvalContext per item), generalized to
// CEL's explicit iter_range/iter_var/accum_var/init/loop_cond/loop_step/
// result shape and its early-termination + error-absorption rule.
func (in *Interpreter) evalComprehension(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	rangeVal, err := in.eval(ctx, n.IterRange, cctx)
	if err != nil {
		return value.Value{}, err
	}

	var items []value.Value
	switch rangeVal.Kind() {
	case value.KindList:
		items = rangeVal.AsListItems()
	case value.KindMap:
		items = rangeVal.AsMap().Keys()
	default:
		return value.Value{}, cerrors.Newf(cerrors.NoSuchOverload, "comprehension range must be list or map, got %s", rangeVal.Kind()).WithNode(n.ID)
	}

	loopCtx := cctx.NewInnerScope()

	accum, err := in.eval(ctx, n.Init, loopCtx)
	if err != nil {
		return value.Value{}, err
	}
	loopCtx.AddVariable(n.AccumVar, accum)

	var pendingErr error

	for _, item := range items {
		select {
		case <-ctx.Done():
			return value.Value{}, ctx.Err()
		default:
		}

		loopCtx.AddVariable(n.IterVar, item)

		condVal, condErr := in.eval(ctx, n.LoopCond, loopCtx)
		if !notStrictlyFalse(condVal, condErr) {
			// loop_cond is strictly Bool(false): terminate, absorbing any
			// pending step error from an earlier iteration (spec §4.5).
			pendingErr = nil
			break
		}

		stepVal, stepErr := in.eval(ctx, n.LoopStep, loopCtx)
		if stepErr != nil {
			pendingErr = stepErr
			// Keep iterating: a later loop_cond == false may still absorb
			// this error (spec §4.5 "unless absorbed by loop_cond's false
			// termination on a later iteration").
			continue
		}
		accum = stepVal
		loopCtx.AddVariable(n.AccumVar, accum)
	}

	if pendingErr != nil {
		// The range is exhausted: the error is still absorbed if the final
		// accumulator makes loop_cond strictly false.
		condVal, condErr := in.eval(ctx, n.LoopCond, loopCtx)
		if notStrictlyFalse(condVal, condErr) {
			return value.Value{}, pendingErr
		}
	}

	return in.eval(ctx, n.Result, loopCtx)
}
