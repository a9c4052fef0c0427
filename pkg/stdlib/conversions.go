package stdlib

import (
	"context"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerConversions wires the nine conversion built-ins of spec §4.7.
// Each delegates straight to the matching pkg/value.To* function, which
// already implements the full per-source-kind matrix and reports
// ConversionError/Overflow on failure (spec §7).
func registerConversions(cctx *celctx.Context) {
	conv := func(name string, fn func(value.Value) (value.Value, error)) {
		cctx.AddFunction(name, &celctx.Overload{
			ArgTypes: []value.Kind{value.KindDynamic},
			Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
				return fn(args[0])
			},
		})
	}

	conv("int", value.ToInt)
	conv("uint", value.ToUInt)
	conv("double", value.ToDouble)
	conv("string", value.ToCELString)
	conv("bytes", value.ToBytes)
	conv("bool", value.ToBool)
	conv("duration", value.ToDuration)
	conv("timestamp", value.ToTimestamp)

	cctx.AddFunction("type", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.TypeName(args[0]), nil
		},
	})
}
