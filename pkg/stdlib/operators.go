package stdlib

import (
	"context"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerOperators wires the arithmetic, comparison, equality, and `in`
// operators as internal function names (spec's binary-operator grammar
// productions desugar to a KindCall targeting these names, mirroring how
// CEL's own reference implementation names its overloads "add_int64_int64"
// etc. — gocel keeps one polymorphic overload per operator name instead of
// one overload per concrete kind pair, since pkg/value's Add/Subtract/
// Compare/Equal already implement the full per-kind-pair matrix of spec
// §3.4/§4.1 internally; re-enumerating every kind pair as a distinct
// celctx.Overload would just duplicate that switch one level up).
//
// Grounded on the teacher's eval_operators.go evalBinary dispatch table
// (opAdd/opSubtract/... keyed by operator string), replacing the float64-
// only fast path with delegation to the tagged-union arithmetic of
// pkg/value.
func registerOperators(cctx *celctx.Context) {
	binary := func(name string, fn func(a, b value.Value) (value.Value, error)) {
		cctx.AddFunction(name, &celctx.Overload{
			ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
			Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
				return fn(args[0], args[1])
			},
		})
	}
	boolBinary := func(name string, fn func(a, b value.Value) (bool, error)) {
		cctx.AddFunction(name, &celctx.Overload{
			ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
			Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
				ok, err := fn(args[0], args[1])
				if err != nil {
					return value.Value{}, err
				}
				return value.Bool(ok), nil
			},
		})
	}

	binary("_+_", value.Add)
	binary("_-_", value.Subtract)
	binary("_*_", value.Multiply)
	binary("_/_", value.Divide)
	binary("_%_", value.Modulo)

	cctx.AddFunction("_==_", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(value.Equal(args[0], args[1])), nil
		},
	})
	cctx.AddFunction("_!=_", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(!value.Equal(args[0], args[1])), nil
		},
	})

	boolBinary("_<_", value.LessErr)
	boolBinary("_<=_", value.LessEqErr)
	boolBinary("_>_", value.GreaterErr)
	boolBinary("_>=_", value.GreaterEqErr)

	cctx.AddFunction("_in_", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Contains(args[0], args[1])
		},
	})
}
