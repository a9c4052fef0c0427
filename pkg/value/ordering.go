package value

import (
	"github.com/sandrolain/gocel/pkg/cerrors"
)

// Ordering is the result of Compare.
type Ordering int

const (
	OrderLess Ordering = iota - 1
	OrderEqual
	OrderGreater
	// OrderUnordered marks a NaN comparison: spec §3.4 requires <,<=,>,>=
	// to all evaluate false against NaN without erroring.
	OrderUnordered
)

// Compare implements the ordering of spec §3.4: defined for numeric
// (cross-type), String (by Unicode code point), Bytes (by octet), Duration,
// and Timestamp. Comparing incomparable types returns NoSuchOverload.
func Compare(a, b Value) (Ordering, error) {
	if isNumeric(a.kind) && isNumeric(b.kind) {
		return compareNumeric(a, b), nil
	}
	if a.kind != b.kind {
		return OrderUnordered, cerrors.Newf(cerrors.NoSuchOverload,
			"no ordering defined between %s and %s", a.kind, b.kind)
	}
	switch a.kind {
	case KindString:
		return compareOrdered(a.s, b.s), nil
	case KindBytes:
		return compareBytes(a.by, b.by), nil
	case KindDuration:
		return compareOrdered(int64(a.dur), int64(b.dur)), nil
	case KindTimestamp:
		switch {
		case a.ts.Before(b.ts):
			return OrderLess, nil
		case a.ts.After(b.ts):
			return OrderGreater, nil
		default:
			return OrderEqual, nil
		}
	default:
		return OrderUnordered, cerrors.Newf(cerrors.NoSuchOverload,
			"no ordering defined for %s", a.kind)
	}
}

func compareNumeric(a, b Value) Ordering {
	// Same exact-integer-domain requirement as numericEqual: an Int/UInt
	// pair must not be canonicalized through float64 before comparing.
	switch {
	case a.kind == KindInt && b.kind == KindUInt:
		return compareIntUint(a.i, b.u)
	case a.kind == KindUInt && b.kind == KindInt:
		return compareIntUint(b.i, a.u).reverse()
	}
	af, aNaN := toF64(a)
	bf, bNaN := toF64(b)
	if aNaN || bNaN {
		return OrderUnordered
	}
	return compareOrdered(af, bf)
}

// compareIntUint compares an Int and a UInt exactly. A negative Int is
// always less than any UInt; otherwise the Int fits uint64 exactly.
func compareIntUint(i int64, u uint64) Ordering {
	if i < 0 {
		return OrderLess
	}
	return compareOrdered(uint64(i), u)
}

func (o Ordering) reverse() Ordering {
	switch o {
	case OrderLess:
		return OrderGreater
	case OrderGreater:
		return OrderLess
	default:
		return o
	}
}

type ordered interface {
	~int64 | ~uint64 | ~float64 | ~string | ~int
}

func compareOrdered[T ordered](a, b T) Ordering {
	switch {
	case a < b:
		return OrderLess
	case a > b:
		return OrderGreater
	default:
		return OrderEqual
	}
}

func compareBytes(a, b []byte) Ordering {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return OrderLess
			}
			return OrderGreater
		}
	}
	return compareOrdered(len(a), len(b))
}

// LessErr implements `<`, returning Compare's NoSuchOverload error for
// operands with no defined ordering.
func LessErr(a, b Value) (bool, error) {
	ord, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return ord == OrderLess, nil
}

// LessEqErr implements `<=`.
func LessEqErr(a, b Value) (bool, error) {
	ord, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return ord == OrderLess || ord == OrderEqual, nil
}

// GreaterErr implements `>`.
func GreaterErr(a, b Value) (bool, error) {
	ord, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return ord == OrderGreater, nil
}

// GreaterEqErr implements `>=`.
func GreaterEqErr(a, b Value) (bool, error) {
	ord, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return ord == OrderGreater || ord == OrderEqual, nil
}
