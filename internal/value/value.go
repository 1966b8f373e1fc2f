package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface representing a stored value.
// Only String, Number, Bool and Object implement it.
type Value interface {
	value() // Sealed
}

// String is a string scalar.
type String string

func (String) value() {}

// Number is a numeric scalar. All numbers are float64, as in JSON.
type Number float64

func (Number) value() {}

// Bool is a boolean scalar.
type Bool bool

func (Bool) value() {}

// Object maps child keys to values. A nil entry is never stored.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// SortedKeys returns keys ordered by UTF-16 code units, matching the
// ordering the hosted service uses for keys.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// CompareKeys compares two keys by UTF-16 code units.
// Go's default string comparison uses UTF-8 bytes, which orders surrogate
// pairs differently.
func CompareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// IsObject reports whether v is a non-nil Object.
func IsObject(v Value) bool {
	_, ok := v.(Object)
	return ok
}

// From converts a plain Go value into a Value.
//
// Accepted inputs: nil, Value, string, bool, all integer and float kinds,
// map[string]any (and other maps with string keys), []any and other slices.
// Slices become objects keyed "0".."n-1". Nil map entries are dropped; an
// empty result stays an empty Object.
func From(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Value:
		return Clone(val), nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Number(val), nil
	case int64:
		return Number(val), nil
	case int32:
		return Number(val), nil
	case uint:
		return Number(val), nil
	case uint64:
		return Number(val), nil
	case float32:
		return fromFloat(float64(val))
	case float64:
		return fromFloat(val)
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			child, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			if child != nil {
				obj[k] = child
			}
		}
		return obj, nil
	case []any:
		obj := make(Object, len(val))
		for i, elem := range val {
			child, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			if child != nil {
				obj[strconv.Itoa(i)] = child
			}
		}
		return obj, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

// MustFrom is From for literals in tests and seed data. It panics on error.
func MustFrom(v any) Value {
	out, err := From(v)
	if err != nil {
		panic(err)
	}
	return out
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number %v cannot be stored", f)
	}
	return Number(f), nil
}

// fromReflect handles named types and typed maps/slices.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return From(rv.Elem().Interface())
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type: %s", rv.Type().Key())
		}
		obj := make(Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			child, err := From(iter.Value().Interface())
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			if child != nil {
				obj[k] = child
			}
		}
		return obj, nil
	case reflect.Slice, reflect.Array:
		obj := make(Object, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			child, err := From(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			if child != nil {
				obj[strconv.Itoa(i)] = child
			}
		}
		return obj, nil
	case reflect.Invalid:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", rv.Type())
	}
}

// Export converts a Value into plain Go values: string, float64, bool,
// map[string]any. Nil stays nil.
func Export(v Value) any {
	switch val := v.(type) {
	case nil:
		return nil
	case String:
		return string(val)
	case Number:
		return float64(val)
	case Bool:
		return bool(val)
	case Object:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = Export(child)
		}
		return out
	default:
		panic(fmt.Sprintf("unknown Value type: %T", v))
	}
}

// Clone returns a deep copy. Scalars are returned as is.
func Clone(v Value) Value {
	obj, ok := v.(Object)
	if !ok {
		return v
	}
	out := make(Object, len(obj))
	for k, child := range obj {
		out[k] = Clone(child)
	}
	return out
}

// Equal reports deep equality. Objects compare key by key; scalars compare
// by type and value.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, child := range av {
			other, ok := bv[k]
			if !ok || !Equal(child, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
