package value

// Opaque is a host-supplied value embedded in the CEL universe and treated
// as atomic by the evaluator (spec §3.1, §4.1). It carries a type tag, an
// equality predicate, and an optional JSON projection — the three things
// the evaluator needs without knowing anything about the concrete host
// type.
type Opaque struct {
	// TypeName is returned by the `type()` built-in for this value.
	TypeName string
	// Native is the host's own representation, recovered via a type
	// assertion by host functions that registered this Opaque type.
	Native interface{}
	// EqualFn implements Opaque equality; nil means "never equal to
	// anything, including another Opaque of the same TypeName" (a safe
	// default for host types with no natural equality).
	EqualFn func(other *Opaque) bool
	// ToJSON projects the Opaque into a JSON-able value. ok is false when
	// the Opaque has no JSON representation; callers gate this behind the
	// `json` feature (spec §6.3).
	ToJSON func() (interface{}, bool)
	// FieldFn exposes named fields on the opaque value for Select and has()
	// (spec §4.4.1, §4.4.4); nil means this opaque type exposes no fields.
	FieldFn func(name string) (Value, bool)
}

// Equal reports whether o and other are the same opaque value.
func (o *Opaque) Equal(other *Opaque) bool {
	if o == nil || other == nil {
		return o == other
	}
	if o.TypeName != other.TypeName {
		return false
	}
	if o.EqualFn == nil {
		return false
	}
	return o.EqualFn(other)
}

// Dynamic is a lazy projection of a host object exposing named fields on
// demand (spec §3.1, §4.1 "DynamicType"). Field access returns a CEL value
// or a "not present" flag; Materialize converts the whole object into an
// owned CEL Value eagerly when the evaluator needs one (for equality and
// for JSON projection).
type Dynamic interface {
	// Field returns the named field's value and true, or a zero Value and
	// false if the field does not exist on this object. Select and has()
	// use it.
	Field(name string) (Value, bool)
	// Materialize converts the whole object into a fully owned CEL Value
	// (e.g. a Map of its fields), used by equality and by ToJSON.
	Materialize() Value
	// AutoMaterialize reports whether this host type is primitive-like and
	// cheap to convert wholesale (e.g. a wrapped scalar). Nothing in this
	// module calls it: the evaluator never materializes a Dynamic eagerly,
	// and fields are always read through Field.
	AutoMaterialize() bool
	// TypeName is returned by the `type()` built-in.
	TypeName() string
}
