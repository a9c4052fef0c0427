package value

import "github.com/sandrolain/gocel/pkg/cerrors"

// Map is an ordered, immutable mapping from a key Value to a value Value.
// Keys are restricted to Int, UInt, Bool, or String (spec §3.1); a single
// Map may mix key kinds. Iteration order is insertion order — the spec
// leaves map iteration order as an open question (§9) beyond what CEL
// demands; gocel resolves it toward deterministic insertion order, the same
// choice the teacher makes for JSONata object keys via OrderedObject.
type Map struct {
	keys []Value
	vals []Value
	// intIdx holds only negative Int keys: no UInt can ever equal a
	// negative value, so this domain never needs to be reconciled against
	// uintIdx. Nonnegative Int keys are canonicalized into uintIdx instead,
	// the same domain UInt keys use, so Int(5) and UInt(5) always land in
	// the same slot without ever routing through a lossy float64
	// conversion (a naive map[float64]int loses precision above 2^53 and
	// silently collides distinct large int64/uint64 keys).
	intIdx  map[int64]int
	uintIdx map[uint64]int
	boolIdx map[bool]int
	strIdx  map[string]int
}

// NewMap builds a Map from parallel key/value slices. Later entries with an
// equal key (per §3.4) overwrite earlier ones, matching map-literal
// semantics. Every key is validated against spec §3.1's restricted key set
// (Int/UInt/Bool/String); a Double key — NaN or otherwise, since spec §3.1
// never lists Double as a valid key kind — or any composite/host kind
// returns an error instead of being silently dropped, mirroring cel-rust's
// Key/KeyRef conversion raising UnsupportedKeyType for the same inputs
// (_examples/original_source/cel/src/objects.rs).
func NewMap(keys, vals []Value) (*Map, error) {
	m := &Map{
		intIdx:  make(map[int64]int, len(keys)),
		uintIdx: make(map[uint64]int, len(keys)),
		boolIdx: make(map[bool]int, len(keys)),
		strIdx:  make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		if err := m.set(k, vals[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewEmptyMap returns a Map with no entries.
func NewEmptyMap() *Map {
	return &Map{
		intIdx:  map[int64]int{},
		uintIdx: map[uint64]int{},
		boolIdx: map[bool]int{},
		strIdx:  map[string]int{},
	}
}

func (m *Map) set(k, v Value) error {
	if slot, ok := m.slotFor(k); ok {
		m.vals[slot] = v
		return nil
	}
	slot := len(m.keys)
	switch k.kind {
	case KindInt:
		if k.i < 0 {
			m.intIdx[k.i] = slot
		} else {
			m.uintIdx[uint64(k.i)] = slot
		}
	case KindUInt:
		m.uintIdx[k.u] = slot
	case KindBool:
		m.boolIdx[k.b] = slot
	case KindString:
		m.strIdx[k.s] = slot
	default:
		return cerrors.Newf(cerrors.InvalidArgument, "unsupported map key type: %s", k.kind)
	}
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return nil
}

// slotFor returns the slot of an existing key equal to k under §3.4 cross-
// numeric equality, if any.
func (m *Map) slotFor(k Value) (int, bool) {
	switch k.kind {
	case KindInt:
		if k.i < 0 {
			slot, ok := m.intIdx[k.i]
			return slot, ok
		}
		slot, ok := m.uintIdx[uint64(k.i)]
		return slot, ok
	case KindUInt:
		slot, ok := m.uintIdx[k.u]
		return slot, ok
	case KindBool:
		slot, ok := m.boolIdx[k.b]
		return slot, ok
	case KindString:
		slot, ok := m.strIdx[k.s]
		return slot, ok
	default:
		return 0, false
	}
}

// categoryPresent reports whether any existing key shares a §3.4-comparable
// category with k: numeric (Int/UInt) is one category, Bool and String are
// each their own. An empty map has no categories at all.
func (m *Map) categoryPresent(k Value) bool {
	switch k.kind {
	case KindInt, KindUInt:
		return len(m.intIdx) > 0 || len(m.uintIdx) > 0
	case KindBool:
		return len(m.boolIdx) > 0
	case KindString:
		return len(m.strIdx) > 0
	default:
		return false
	}
}

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

// Keys returns the keys in insertion order. Callers must not mutate it.
func (m *Map) Keys() []Value { return m.keys }

// Entries returns parallel key/value slices in insertion order.
func (m *Map) Entries() ([]Value, []Value) { return m.keys, m.vals }

// Get looks up k per the Index semantics of spec §4.4.2. The three return
// values are (value, found, categoryMismatch):
//   - found=true:                        key present, value is valid.
//   - found=false, categoryMismatch=false: no such key, but k's category
//     (numeric/bool/string) matches at least one existing key, or the map
//     is empty — caller reports NoSuchKey.
//   - found=false, categoryMismatch=true:  k's category matches none of the
//     map's existing keys — caller reports NoSuchOverload (spec §8 "Map key
//     strictness": indexing a map<string,_> with a UInt key).
func (m *Map) Get(k Value) (val Value, found bool, categoryMismatch bool) {
	if slot, ok := m.slotFor(k); ok {
		return m.vals[slot], true, false
	}
	if m.Len() == 0 {
		return Value{}, false, false
	}
	return Value{}, false, !m.categoryPresent(k)
}

// With returns a new Map with k bound to v, leaving m untouched (spec §3.2
// immutability). Used by optional/map-merge style built-ins.
func (m *Map) With(k, v Value) (*Map, error) {
	cp, err := NewMap(append([]Value{}, m.keys...), append([]Value{}, m.vals...))
	if err != nil {
		return nil, err
	}
	if err := cp.set(k, v); err != nil {
		return nil, err
	}
	return cp, nil
}
