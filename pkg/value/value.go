// Package value implements the CEL dynamic value universe (spec §3, §4.1):
// a closed, tagged set of primitive/composite variants plus two open
// extension points (Opaque, Dynamic) for host-supplied types.
//
// Values are immutable once constructed (spec §3.2). A method that looks
// like a mutation (Map.With) returns a new Map and leaves the receiver
// untouched.
package value

import (
	"time"
)

// Kind tags the variant a Value holds. It is a closed set on purpose: the
// teacher's dynamic-typed JSONata universe is one bare interface{}, but CEL's
// distinctions (int vs uint vs double, duration vs timestamp, optional vs
// null) are load-bearing for overload resolution and must be checkable
// without a type switch on interface{}.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUInt
	KindDouble
	KindString
	KindBytes
	KindDuration
	KindTimestamp
	KindList
	KindMap
	KindOptional
	KindOpaque
	KindDynamic
)

// String returns the CEL type name for a Kind, as returned by the `type()`
// built-in and used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null_type"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUInt:
		return "uint"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindDuration:
		return "google.protobuf.Duration"
	case KindTimestamp:
		return "google.protobuf.Timestamp"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindOptional:
		return "optional_type"
	case KindOpaque:
		return "opaque"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Value is the single universal CEL runtime value. It carries one inline
// representation per Kind; composite kinds (List, Map, Optional) hold a
// pointer to an immutable payload so that copying a Value is always cheap
// and never deep-copies a collection (spec §3.3: shared read-only reference,
// never a second mutable reader).
type Value struct {
	kind Kind

	b   bool
	i   int64
	u   uint64
	f   float64
	s   string
	by  []byte
	dur time.Duration
	ts  time.Time

	list *listPayload
	mp   *Map
	opt  *optPayload

	opaque  *Opaque
	dynamic Dynamic
}

type listPayload struct {
	items []Value
}

type optPayload struct {
	present bool
	value   Value
}

// Kind returns the variant tag of v.
func (v Value) Kind() Kind { return v.kind }

// --- Constructors ---

// Null is the single distinguished null value.
var Null = Value{kind: KindNull}

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int constructs a signed 64-bit Int value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// UInt constructs an unsigned 64-bit UInt value.
func UInt(u uint64) Value { return Value{kind: KindUInt, u: u} }

// Double constructs an IEEE-754 binary64 value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String constructs an immutable UTF-8 String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bytes constructs an immutable Bytes value. The caller must not mutate b
// after passing it in; Bytes copies defensively to uphold the immutability
// invariant (spec §3.2).
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, by: cp}
}

// Duration constructs a signed nanosecond-precision interval.
func Duration(d time.Duration) Value { return Value{kind: KindDuration, dur: d} }

// Timestamp constructs a UTC instant with nanosecond precision.
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, ts: t.UTC()} }

// List constructs an ordered, finite List value from items. The slice is
// copied so later mutation of the caller's slice is not observable.
func List(items []Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindList, list: &listPayload{items: cp}}
}

// NewMapValue wraps a *Map (see map.go) into a Value.
func NewMapValue(m *Map) Value {
	return Value{kind: KindMap, mp: m}
}

// OptionalOf constructs Optional(v).
func OptionalOf(v Value) Value {
	return Value{kind: KindOptional, opt: &optPayload{present: true, value: v}}
}

// OptionalNone is Optional.none.
var OptionalNone = Value{kind: KindOptional, opt: &optPayload{present: false}}

// OptionalOfNonZeroValue returns Optional.none if v is the zero value of
// its type, else Optional(v) (spec §4.4.5).
func OptionalOfNonZeroValue(v Value) Value {
	if v.IsZero() {
		return OptionalNone
	}
	return OptionalOf(v)
}

// NewOpaque wraps a host value into an Opaque Value.
func NewOpaque(o *Opaque) Value {
	return Value{kind: KindOpaque, opaque: o}
}

// NewDynamic wraps a host field-projection object into a Dynamic Value.
func NewDynamic(d Dynamic) Value {
	return Value{kind: KindDynamic, dynamic: d}
}

// --- Accessors ---

// AsBool returns the underlying bool; callers must check Kind() == KindBool first.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the underlying int64.
func (v Value) AsInt() int64 { return v.i }

// AsUInt returns the underlying uint64.
func (v Value) AsUInt() uint64 { return v.u }

// AsDouble returns the underlying float64.
func (v Value) AsDouble() float64 { return v.f }

// AsString returns the underlying string.
func (v Value) AsString() string { return v.s }

// AsBytes returns the underlying byte slice. The returned slice must not be
// mutated by the caller.
func (v Value) AsBytes() []byte { return v.by }

// AsDuration returns the underlying time.Duration.
func (v Value) AsDuration() time.Duration { return v.dur }

// AsTimestamp returns the underlying time.Time (always UTC).
func (v Value) AsTimestamp() time.Time { return v.ts }

// AsListItems returns the underlying item slice. Callers must not mutate it.
func (v Value) AsListItems() []Value {
	if v.list == nil {
		return nil
	}
	return v.list.items
}

// AsMap returns the underlying *Map.
func (v Value) AsMap() *Map { return v.mp }

// IsOptionalPresent reports whether an Optional Value holds a value.
func (v Value) IsOptionalPresent() bool { return v.opt != nil && v.opt.present }

// OptionalValue returns the wrapped value of Optional(v); callers must
// check IsOptionalPresent first.
func (v Value) OptionalValue() Value { return v.opt.value }

// AsOpaque returns the underlying *Opaque.
func (v Value) AsOpaque() *Opaque { return v.opaque }

// AsDynamic returns the underlying Dynamic host object.
func (v Value) AsDynamic() Dynamic { return v.dynamic }

// IsZero reports whether v is the zero value of its own type, used by
// optional.ofNonZeroValue (spec §4.4.5).
func (v Value) IsZero() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == false
	case KindInt:
		return v.i == 0
	case KindUInt:
		return v.u == 0
	case KindDouble:
		return v.f == 0
	case KindString:
		return v.s == ""
	case KindBytes:
		return len(v.by) == 0
	case KindDuration:
		return v.dur == 0
	case KindList:
		return len(v.AsListItems()) == 0
	case KindMap:
		return v.mp == nil || v.mp.Len() == 0
	default:
		return false
	}
}
