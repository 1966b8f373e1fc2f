package query

import (
	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Record is one child of the queried value.
type Record struct {
	Key   string
	Value value.Value
}

// Comparator orders records. It returns -1 when a is GREATER than b, 1 when
// a is smaller and 0 when they tie, so sorting with it yields descending order.
type Comparator func(a, b Record) int

// ComparatorFor returns the comparator for an ordering. A nil order compares
// by key.
func ComparatorFor(o Order) Comparator {
	switch ord := o.(type) {
	case ByValue:
		return func(a, b Record) int {
			return -value.Compare(a.Value, b.Value)
		}
	case ByChild:
		return func(a, b Record) int {
			return -value.Compare(field(a.Value, ord.Name), field(b.Value, ord.Name))
		}
	default:
		return func(a, b Record) int {
			return -value.CompareKeys(a.Key, b.Key)
		}
	}
}

// field reads a possibly nested field of v; nil when absent.
func field(v value.Value, name string) value.Value {
	for _, seg := range keypath.Segments(name) {
		obj, ok := v.(value.Object)
		if !ok {
			return nil
		}
		v = obj[seg]
	}
	return v
}

// target is what a filter compares against for record r.
func target(o Order, key string, r Record) value.Value {
	if key != "" {
		return field(r.Value, key)
	}
	switch ord := o.(type) {
	case ByChild:
		return field(r.Value, ord.Name)
	case ByValue:
		return r.Value
	default:
		return value.String(r.Key)
	}
}
