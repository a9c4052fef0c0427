package stdlib

import (
	"context"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerAggregateBuiltins wires variadic max/min (spec §4.7). Both accept
// either a single List argument or one or more scalar arguments of a
// mutually ordered kind (spec §3.4); mixing unordered kinds surfaces
// Compare's own NoSuchOverload.
func registerAggregateBuiltins(cctx *celctx.Context) {
	cctx.AddFunction("max", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Variadic: true,
		Impl:     reduceExtreme(value.OrderGreater),
	})
	cctx.AddFunction("min", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Variadic: true,
		Impl:     reduceExtreme(value.OrderLess),
	})
}

// reduceExtreme builds max (want == OrderGreater) or min (want == OrderLess)
// as a left-fold over args using value.Compare, unwrapping a lone List
// argument first so that `max([1,2,3])` and `max(1,2,3)` both work.
func reduceExtreme(want value.Ordering) celctx.Impl {
	return func(ctx context.Context, args []value.Value) (value.Value, error) {
		items := args
		if len(args) == 1 && args[0].Kind() == value.KindList {
			items = args[0].AsListItems()
		}
		if len(items) == 0 {
			return value.Value{}, cerrors.New(cerrors.InvalidArgument, "max/min requires at least one argument")
		}
		best := items[0]
		for _, v := range items[1:] {
			ord, err := value.Compare(v, best)
			if err != nil {
				return value.Value{}, err
			}
			if ord == want {
				best = v
			}
		}
		return best, nil
	}
}
