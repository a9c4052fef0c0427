package value

import (
	"math"
	"time"

	"github.com/sandrolain/gocel/pkg/cerrors"
)

func noSuchOverload(op string, a, b Value) error {
	return cerrors.Newf(cerrors.NoSuchOverload, "no overload for %s %s %s", a.kind, op, b.kind)
}

// Add implements `+` (spec §4.1): checked Int/UInt addition, IEEE-754
// Double addition, String/Bytes/List concatenation, and Timestamp+Duration
// / Duration+Duration.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		r, ok := addInt64(a.i, b.i)
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 addition overflow")
		}
		return Int(r), nil
	case a.kind == KindUInt && b.kind == KindUInt:
		r, ok := addUInt64(a.u, b.u)
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "uint64 addition overflow")
		}
		return UInt(r), nil
	case a.kind == KindDouble && b.kind == KindDouble:
		return Double(a.f + b.f), nil
	case a.kind == KindString && b.kind == KindString:
		return String(a.s + b.s), nil
	case a.kind == KindBytes && b.kind == KindBytes:
		out := make([]byte, 0, len(a.by)+len(b.by))
		out = append(out, a.by...)
		out = append(out, b.by...)
		return Bytes(out), nil
	case a.kind == KindList && b.kind == KindList:
		return List(append(append([]Value{}, a.AsListItems()...), b.AsListItems()...)), nil
	case a.kind == KindTimestamp && b.kind == KindDuration:
		return Timestamp(a.ts.Add(b.dur)), nil
	case a.kind == KindDuration && b.kind == KindTimestamp:
		return Timestamp(b.ts.Add(a.dur)), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		r, ok := addInt64(int64(a.dur), int64(b.dur))
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "duration addition overflow")
		}
		return Duration(time.Duration(r)), nil
	default:
		return Value{}, noSuchOverload("+", a, b)
	}
}

// Subtract implements `-` (spec §4.1).
func Subtract(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		r, ok := subInt64(a.i, b.i)
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 subtraction overflow")
		}
		return Int(r), nil
	case a.kind == KindUInt && b.kind == KindUInt:
		if b.u > a.u {
			return Value{}, cerrors.New(cerrors.Overflow, "uint64 subtraction underflow")
		}
		return UInt(a.u - b.u), nil
	case a.kind == KindDouble && b.kind == KindDouble:
		return Double(a.f - b.f), nil
	case a.kind == KindTimestamp && b.kind == KindTimestamp:
		return Duration(a.ts.Sub(b.ts)), nil
	case a.kind == KindTimestamp && b.kind == KindDuration:
		return Timestamp(a.ts.Add(-b.dur)), nil
	case a.kind == KindDuration && b.kind == KindDuration:
		r, ok := subInt64(int64(a.dur), int64(b.dur))
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "duration subtraction overflow")
		}
		return Duration(time.Duration(r)), nil
	default:
		return Value{}, noSuchOverload("-", a, b)
	}
}

// Multiply implements `*` (spec §4.1).
func Multiply(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		r, ok := mulInt64(a.i, b.i)
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 multiplication overflow")
		}
		return Int(r), nil
	case a.kind == KindUInt && b.kind == KindUInt:
		r, ok := mulUInt64(a.u, b.u)
		if !ok {
			return Value{}, cerrors.New(cerrors.Overflow, "uint64 multiplication overflow")
		}
		return UInt(r), nil
	case a.kind == KindDouble && b.kind == KindDouble:
		return Double(a.f * b.f), nil
	default:
		return Value{}, noSuchOverload("*", a, b)
	}
}

// Divide implements `/` (spec §4.1). Int/UInt division by zero is an error;
// Double division follows IEEE-754 (division by zero yields ±Inf or NaN,
// never an error).
func Divide(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Value{}, cerrors.New(cerrors.DivideByZero, "int division by zero")
		}
		if a.i == math.MinInt64 && b.i == -1 {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 division overflow")
		}
		return Int(a.i / b.i), nil
	case a.kind == KindUInt && b.kind == KindUInt:
		if b.u == 0 {
			return Value{}, cerrors.New(cerrors.DivideByZero, "uint division by zero")
		}
		return UInt(a.u / b.u), nil
	case a.kind == KindDouble && b.kind == KindDouble:
		return Double(a.f / b.f), nil
	default:
		return Value{}, noSuchOverload("/", a, b)
	}
}

// Modulo implements `%`. `Int % 0` is an error (spec §4.1); there is no
// Double modulo overload in CEL.
func Modulo(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return Value{}, cerrors.New(cerrors.DivideByZero, "int modulo by zero")
		}
		if a.i == math.MinInt64 && b.i == -1 {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 modulo overflow")
		}
		return Int(a.i % b.i), nil
	case a.kind == KindUInt && b.kind == KindUInt:
		if b.u == 0 {
			return Value{}, cerrors.New(cerrors.DivideByZero, "uint modulo by zero")
		}
		return UInt(a.u % b.u), nil
	default:
		return Value{}, noSuchOverload("%", a, b)
	}
}

// Negate implements unary `-` on Int, Double, or Duration (spec §4.3).
func Negate(a Value) (Value, error) {
	switch a.kind {
	case KindInt:
		if a.i == math.MinInt64 {
			return Value{}, cerrors.New(cerrors.Overflow, "int64 negation overflow")
		}
		return Int(-a.i), nil
	case KindDouble:
		return Double(-a.f), nil
	case KindDuration:
		return Duration(-a.dur), nil
	default:
		return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "no unary - overload for %s", a.kind)
	}
}

func addInt64(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, false
	}
	return r, true
}

func subInt64(a, b int64) (int64, bool) {
	r := a - b
	if (b < 0 && r < a) || (b > 0 && r > a) {
		return 0, false
	}
	return r, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	if a == -1 && b == math.MinInt64 {
		return 0, false
	}
	return r, true
}

func addUInt64(a, b uint64) (uint64, bool) {
	r := a + b
	if r < a {
		return 0, false
	}
	return r, true
}

func mulUInt64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}
