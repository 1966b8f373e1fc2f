package query

import (
	"slices"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Run applies d to v, the value stored at d.Path, and returns the snapshot.
// Scalars and absent values are returned as they are; ordering, filters and
// limits only apply to objects.
func Run(d Descriptor, v value.Value) (*Snapshot, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	order := d.EffectiveOrder()
	cmp := ComparatorFor(order)
	key := keypath.Key(d.Path)

	obj, ok := v.(value.Object)
	if !ok || d.IsPlain() {
		return NewSnapshot(key, v, cmp), nil
	}

	natural := Records(obj)
	ordered := slices.Clone(natural)
	slices.SortStableFunc(ordered, cmp)

	for _, f := range d.Filters {
		ordered = applyFilter(order, f, ordered)
	}
	if d.Limit != nil {
		ordered = applyLimit(*d.Limit, ordered)
	}

	keep := make(map[string]bool, len(ordered))
	for _, r := range ordered {
		keep[r.Key] = true
	}
	result := make([]Record, 0, len(ordered))
	for _, r := range natural {
		if keep[r.Key] {
			result = append(result, r)
		}
	}
	return NewResultSnapshot(key, result, cmp), nil
}

// Records lists the children of obj in natural (key) order.
func Records(obj value.Object) []Record {
	out := make([]Record, 0, len(obj))
	for _, k := range obj.SortedKeys() {
		out = append(out, Record{Key: k, Value: obj[k]})
	}
	return out
}

func applyFilter(o Order, f Filter, in []Record) []Record {
	var keepFn func(value.Value) bool
	var fieldName string
	switch flt := f.(type) {
	case EqualTo:
		fieldName = flt.Key
		keepFn = func(t value.Value) bool { return value.Equal(t, flt.Value) }
	case StartAt:
		fieldName = flt.Key
		keepFn = func(t value.Value) bool { return value.Compare(t, flt.Value) >= 0 }
	case EndAt:
		fieldName = flt.Key
		keepFn = func(t value.Value) bool { return value.Compare(t, flt.Value) <= 0 }
	default:
		return in
	}
	out := make([]Record, 0, len(in))
	for _, r := range in {
		if keepFn(target(o, fieldName, r)) {
			out = append(out, r)
		}
	}
	return out
}

func applyLimit(l Limit, in []Record) []Record {
	if l.N >= len(in) {
		return in
	}
	if l.Last {
		return in[len(in)-l.N:]
	}
	return in[:l.N]
}
