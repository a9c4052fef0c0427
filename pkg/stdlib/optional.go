package stdlib

import (
	"context"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerOptionalBuiltins wires optional.of/optional.ofNonZeroValue and
// the member-style hasValue/value/or/orValue (spec §4.7, §4.4.5).
func registerOptionalBuiltins(cctx *celctx.Context) {
	cctx.AddFunction("optional.of", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.OptionalOf(args[0]), nil
		},
	})
	cctx.AddFunction("optional.ofNonZeroValue", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.OptionalOfNonZeroValue(args[0]), nil
		},
	})

	cctx.AddFunction("hasValue", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindOptional},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(args[0].IsOptionalPresent()), nil
		},
	})
	cctx.AddFunction("value", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindOptional},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			if !args[0].IsOptionalPresent() {
				return value.Value{}, cerrors.New(cerrors.InvalidArgument, "value() called on an absent optional")
			}
			return args[0].OptionalValue(), nil
		},
	})
	cctx.AddFunction("or", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindOptional, value.KindOptional},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			if args[0].IsOptionalPresent() {
				return args[0], nil
			}
			return args[1], nil
		},
	})
	cctx.AddFunction("orValue", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindOptional, value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			if args[0].IsOptionalPresent() {
				return args[0].OptionalValue(), nil
			}
			return args[1], nil
		},
	})
}
