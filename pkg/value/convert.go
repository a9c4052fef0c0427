package value

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sandrolain/gocel/pkg/cerrors"
)

func conversionError(to string, v Value, cause error) error {
	err := cerrors.Newf(cerrors.ConversionError, "cannot convert %s to %s", v.kind, to)
	if cause != nil {
		return err.WithCause(cause)
	}
	return err
}

// ToInt implements the `int()` conversion built-in (spec §4.7).
func ToInt(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return v, nil
	case KindUInt:
		if v.u > math.MaxInt64 {
			return Value{}, cerrors.New(cerrors.Overflow, "uint value too large for int")
		}
		return Int(int64(v.u)), nil
	case KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) || v.f < math.MinInt64 || v.f > math.MaxInt64 {
			return Value{}, cerrors.New(cerrors.Overflow, "double value out of int range")
		}
		return Int(int64(v.f)), nil
	case KindString:
		i, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return Value{}, conversionError("int", v, err)
		}
		return Int(i), nil
	default:
		return Value{}, conversionError("int", v, nil)
	}
}

// ToUInt implements the `uint()` conversion built-in.
func ToUInt(v Value) (Value, error) {
	switch v.kind {
	case KindUInt:
		return v, nil
	case KindInt:
		if v.i < 0 {
			return Value{}, cerrors.New(cerrors.Overflow, "negative int value cannot convert to uint")
		}
		return UInt(uint64(v.i)), nil
	case KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) || v.f < 0 || v.f > math.MaxUint64 {
			return Value{}, cerrors.New(cerrors.Overflow, "double value out of uint range")
		}
		return UInt(uint64(v.f)), nil
	case KindString:
		u, err := strconv.ParseUint(v.s, 10, 64)
		if err != nil {
			return Value{}, conversionError("uint", v, err)
		}
		return UInt(u), nil
	default:
		return Value{}, conversionError("uint", v, nil)
	}
}

// ToDouble implements the `double()` conversion built-in.
func ToDouble(v Value) (Value, error) {
	switch v.kind {
	case KindDouble:
		return v, nil
	case KindInt:
		return Double(float64(v.i)), nil
	case KindUInt:
		return Double(float64(v.u)), nil
	case KindString:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return Value{}, conversionError("double", v, err)
		}
		return Double(f), nil
	default:
		return Value{}, conversionError("double", v, nil)
	}
}

// ToCELString implements the `string()` conversion built-in, rendering a
// scalar value the way a CEL program would print it back out. List, Map,
// Optional, Opaque and Dynamic values are a ConversionError.
func ToCELString(v Value) (Value, error) {
	switch v.kind {
	case KindString:
		return v, nil
	case KindInt:
		return String(strconv.FormatInt(v.i, 10)), nil
	case KindUInt:
		return String(strconv.FormatUint(v.u, 10)), nil
	case KindDouble:
		return String(formatDouble(v.f)), nil
	case KindBool:
		return String(strconv.FormatBool(v.b)), nil
	case KindBytes:
		return String(string(v.by)), nil
	case KindDuration:
		return String(formatDuration(v.dur)), nil
	case KindTimestamp:
		return String(v.ts.Format(time.RFC3339Nano)), nil
	case KindNull:
		return String("null"), nil
	default:
		return Value{}, conversionError("string", v, nil)
	}
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%gs", d.Seconds())
}

// ToBytes implements the `bytes()` conversion built-in.
func ToBytes(v Value) (Value, error) {
	switch v.kind {
	case KindBytes:
		return v, nil
	case KindString:
		return Bytes([]byte(v.s)), nil
	default:
		return Value{}, conversionError("bytes", v, nil)
	}
}

// ToBool implements the `bool()` conversion built-in.
func ToBool(v Value) (Value, error) {
	switch v.kind {
	case KindBool:
		return v, nil
	case KindString:
		switch v.s {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		default:
			return Value{}, conversionError("bool", v, nil)
		}
	default:
		return Value{}, conversionError("bool", v, nil)
	}
}

// ToDuration implements the `duration()` conversion built-in, parsing a
// Go-style duration string ("1h30m", "250ms", ...).
func ToDuration(v Value) (Value, error) {
	switch v.kind {
	case KindDuration:
		return v, nil
	case KindString:
		d, err := time.ParseDuration(v.s)
		if err != nil {
			return Value{}, conversionError("duration", v, err)
		}
		return Duration(d), nil
	case KindInt:
		return Duration(time.Duration(v.i)), nil
	default:
		return Value{}, conversionError("duration", v, nil)
	}
}

// ToTimestamp implements the `timestamp()` conversion built-in, parsing an
// RFC 3339 string.
func ToTimestamp(v Value) (Value, error) {
	switch v.kind {
	case KindTimestamp:
		return v, nil
	case KindString:
		t, err := time.Parse(time.RFC3339Nano, v.s)
		if err != nil {
			return Value{}, conversionError("timestamp", v, err)
		}
		return Timestamp(t), nil
	case KindInt:
		return Timestamp(time.Unix(v.i, 0)), nil
	default:
		return Value{}, conversionError("timestamp", v, nil)
	}
}

// TypeName implements the `type()` conversion built-in.
func TypeName(v Value) Value {
	if v.kind == KindOpaque {
		return String(v.opaque.TypeName)
	}
	if v.kind == KindDynamic {
		return String(v.dynamic.TypeName())
	}
	return String(v.kind.String())
}
