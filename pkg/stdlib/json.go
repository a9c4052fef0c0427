package stdlib

import (
	"context"
	"encoding/json"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerJSONBuiltins installs `toJSON(x)` (spec §6.3's `json` feature): it
// projects x through value.ToJSON (Opaque/Dynamic types included) and
// marshals the result to a JSON-text String via encoding/json. This is the
// one place Features.JSON actually gates something — without registering a
// CEL-visible built-in behind it, the flag would be read nowhere and do
// nothing, a config knob for show.
func registerJSONBuiltins(cctx *celctx.Context) {
	cctx.AddFunction("toJSON", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Impl:     toJSONImpl,
	})
}

func toJSONImpl(ctx context.Context, args []value.Value) (value.Value, error) {
	projected, err := value.ToJSON(args[0])
	if err != nil {
		return value.Value{}, err
	}
	out, err := json.Marshal(projected)
	if err != nil {
		return value.Value{}, cerrors.Newf(cerrors.ConversionError, "toJSON: %v", err)
	}
	return value.String(string(out)), nil
}
