package value

import (
	"unicode/utf8"

	"github.com/sandrolain/gocel/pkg/cerrors"
)

// Size implements the `size()` built-in (spec §4.7): Unicode code points for
// String, octets for Bytes, elements for List, entries for Map.
func Size(v Value) (Value, error) {
	switch v.kind {
	case KindString:
		return Int(int64(utf8.RuneCountInString(v.s))), nil
	case KindBytes:
		return Int(int64(len(v.by))), nil
	case KindList:
		return Int(int64(len(v.AsListItems()))), nil
	case KindMap:
		return Int(int64(v.mp.Len())), nil
	default:
		return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "size() has no overload for %s", v.kind)
	}
}

// Contains implements the `in` operator (spec §4.7): linear scan with
// first-equality-match on List, key equality on Map.
func Contains(needle, haystack Value) (Value, error) {
	switch haystack.kind {
	case KindList:
		for _, item := range haystack.AsListItems() {
			if Equal(needle, item) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case KindMap:
		_, found, mismatch := haystack.mp.Get(needle)
		if mismatch {
			return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "in: key type %s has no counterpart in this map", needle.kind)
		}
		return Bool(found), nil
	default:
		return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "in has no overload for %s", haystack.kind)
	}
}

// IndexList implements List indexing (spec §4.4.2): the key must be a
// non-negative Int in range; UInt indices are rejected (no coercion), and
// out-of-range Int indices report IndexOutOfBounds.
func IndexList(list Value, key Value) (Value, error) {
	items := list.AsListItems()
	if key.kind != KindInt {
		return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "list index must be int, got %s", key.kind)
	}
	if key.i < 0 || key.i >= int64(len(items)) {
		return Value{}, cerrors.Newf(cerrors.IndexOutOfBounds, "index %d out of range [0,%d)", key.i, len(items))
	}
	return items[key.i], nil
}

// IndexMap implements Map indexing (spec §4.4.2), using Map.Get's
// category-aware lookup to distinguish NoSuchKey from NoSuchOverload.
func IndexMap(m Value, key Value) (Value, error) {
	val, found, mismatch := m.mp.Get(key)
	if mismatch {
		return Value{}, cerrors.Newf(cerrors.NoSuchOverload, "map has no %s-typed keys", key.kind)
	}
	if !found {
		return Value{}, cerrors.Newf(cerrors.NoSuchKey, "key not found")
	}
	return val, nil
}
