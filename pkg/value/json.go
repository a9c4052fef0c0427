package value

import "github.com/sandrolain/gocel/pkg/cerrors"

// ToJSON projects a Value into a JSON-marshalable Go value, used by the
// `json` feature gate (spec §6.3) for Opaque/Dynamic host types and for
// hosts that want to serialize an evaluation result. Values with no JSON
// representation (Duration/Timestamp render as their string form; a
// host Opaque with no ToJSON projector errors).
func ToJSON(v Value) (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindUInt:
		return v.u, nil
	case KindDouble:
		return v.f, nil
	case KindString:
		return v.s, nil
	case KindBytes:
		return v.by, nil
	case KindDuration:
		s, _ := ToCELString(v)
		return s.s, nil
	case KindTimestamp:
		s, _ := ToCELString(v)
		return s.s, nil
	case KindList:
		items := v.AsListItems()
		out := make([]interface{}, len(items))
		for i, item := range items {
			j, err := ToJSON(item)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case KindMap:
		keys, vals := v.mp.Entries()
		out := make(map[string]interface{}, len(keys))
		for i, k := range keys {
			ks, err := ToCELString(k)
			if err != nil {
				return nil, err
			}
			jv, err := ToJSON(vals[i])
			if err != nil {
				return nil, err
			}
			out[ks.s] = jv
		}
		return out, nil
	case KindOptional:
		if !v.IsOptionalPresent() {
			return nil, nil
		}
		return ToJSON(v.OptionalValue())
	case KindOpaque:
		if v.opaque.ToJSON == nil {
			return nil, cerrors.Newf(cerrors.ConversionError, "opaque type %s has no JSON projection", v.opaque.TypeName)
		}
		j, ok := v.opaque.ToJSON()
		if !ok {
			return nil, cerrors.Newf(cerrors.ConversionError, "opaque type %s has no JSON projection", v.opaque.TypeName)
		}
		return j, nil
	case KindDynamic:
		return ToJSON(v.dynamic.Materialize())
	default:
		return nil, cerrors.Newf(cerrors.ConversionError, "cannot project %s to JSON", v.kind)
	}
}
