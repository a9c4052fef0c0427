package value

import "math"

// Equal implements the total, never-erroring equality of spec §3.4: same-
// category operands always produce a boolean, numeric equality is cross-
// type by mathematical value, and all other cross-type combinations are
// false. NaN is never equal to anything, including itself. A Dynamic
// operand is materialized before it is compared.
func Equal(a, b Value) bool {
	if a.kind == KindDynamic && b.kind != KindDynamic {
		return Equal(a.dynamic.Materialize(), b)
	}
	if b.kind == KindDynamic && a.kind != KindDynamic {
		return Equal(a, b.dynamic.Materialize())
	}
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return numericEqual(a, b)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindBytes:
		return bytesEqual(a.by, b.by)
	case KindDuration:
		return a.dur == b.dur
	case KindTimestamp:
		return a.ts.Equal(b.ts)
	case KindList:
		return listEqual(a.AsListItems(), b.AsListItems())
	case KindMap:
		return mapEqual(a.mp, b.mp)
	case KindOptional:
		return optionalEqual(a, b)
	case KindOpaque:
		return a.opaque.Equal(b.opaque)
	case KindDynamic:
		return Equal(a.dynamic.Materialize(), b.dynamic.Materialize())
	default:
		return false
	}
}

func isNumeric(k Kind) bool {
	return k == KindInt || k == KindUInt || k == KindDouble
}

func numericEqual(a, b Value) bool {
	// Int/UInt straddle the 2^53 float64 mantissa: round both through
	// float64 and large values on either side of that boundary can
	// collide. Compare in the integer domain instead, mirroring the
	// original's try_into-based exact comparison.
	switch {
	case a.kind == KindInt && b.kind == KindUInt:
		return intEqualsUint(a.i, b.u)
	case a.kind == KindUInt && b.kind == KindInt:
		return intEqualsUint(b.i, a.u)
	}
	af, aIsNaN := toF64(a)
	bf, bIsNaN := toF64(b)
	if aIsNaN || bIsNaN {
		return false // NaN is never equal to anything, including itself
	}
	return af == bf
}

// intEqualsUint compares an Int and a UInt exactly, without routing
// through float64.
func intEqualsUint(i int64, u uint64) bool {
	if i < 0 {
		return false
	}
	return uint64(i) == u
}

// toF64 converts a numeric Value to float64 for comparison, reporting
// whether the value is a double NaN (the only source of NaN in this
// universe, since Int/UInt cannot represent NaN).
func toF64(v Value) (f float64, isNaN bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), false
	case KindUInt:
		return float64(v.u), false
	case KindDouble:
		return v.f, math.IsNaN(v.f)
	default:
		return 0, false
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func listEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func mapEqual(a, b *Map) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Len() != b.Len() {
		return false
	}
	keys, vals := a.Entries()
	for i, k := range keys {
		bv, found, _ := b.Get(k)
		if !found || !Equal(vals[i], bv) {
			return false
		}
	}
	return true
}

func optionalEqual(a, b Value) bool {
	aPresent, bPresent := a.IsOptionalPresent(), b.IsOptionalPresent()
	if aPresent != bPresent {
		return false
	}
	if !aPresent {
		return true // both none
	}
	return Equal(a.OptionalValue(), b.OptionalValue())
}

// IsNaN reports whether v is a Double holding NaN.
func IsNaN(v Value) bool {
	return v.kind == KindDouble && math.IsNaN(v.f)
}
