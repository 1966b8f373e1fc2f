package query

import (
	"slices"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// syntheticID is the field push stamps with the record's own key.
const syntheticID = "id"

// Snapshot is an immutable view of a value plus the comparator that decides
// ForEach order.
type Snapshot struct {
	key string
	val value.Value
	cmp Comparator
}

// NewSnapshot wraps a copy of v. A nil comparator orders by key.
func NewSnapshot(key string, v value.Value, cmp Comparator) *Snapshot {
	if cmp == nil {
		cmp = ComparatorFor(ByKey{})
	}
	return &Snapshot{key: key, val: value.Clone(v), cmp: cmp}
}

// NewResultSnapshot rebuilds a key-indexed object from query records. An
// empty result is a snapshot of nothing.
func NewResultSnapshot(key string, records []Record, cmp Comparator) *Snapshot {
	if len(records) == 0 {
		return NewSnapshot(key, nil, cmp)
	}
	obj := make(value.Object, len(records))
	for _, r := range records {
		obj[r.Key] = r.Value
	}
	return NewSnapshot(key, obj, cmp)
}

// Key is the last path segment of the location this snapshot was read from.
func (s *Snapshot) Key() string {
	return s.key
}

// Val returns a copy of the value; nil when nothing is stored.
func (s *Snapshot) Val() value.Value {
	return value.Clone(s.val)
}

// Export returns the value as plain Go data (map[string]any, float64, string, bool).
func (s *Snapshot) Export() any {
	return value.Export(s.val)
}

// Exists reports whether the snapshot holds a value.
func (s *Snapshot) Exists() bool {
	return s.val != nil
}

// Child returns the snapshot of a descendant. Missing children yield a
// snapshot holding nil.
func (s *Snapshot) Child(path string) *Snapshot {
	return NewSnapshot(keypath.Key(path), field(s.val, path), nil)
}

// HasChild reports whether a descendant exists. Scalars have no children.
func (s *Snapshot) HasChild(path string) bool {
	if !value.IsObject(s.val) {
		return false
	}
	return field(s.val, path) != nil
}

// HasChildren reports whether the value is an object with at least one child.
func (s *Snapshot) HasChildren() bool {
	return s.NumChildren() > 0
}

// NumChildren counts the direct children; 0 for scalars.
func (s *Snapshot) NumChildren() int {
	obj, ok := s.val.(value.Object)
	if !ok {
		return 0
	}
	return len(obj)
}

// ForEach calls fn for each child in comparator order. A synthetic "id" field
// equal to the child's key is stripped first. Iteration stops when fn returns
// true; ForEach then reports true.
func (s *Snapshot) ForEach(fn func(child *Snapshot) bool) bool {
	for _, r := range s.ordered() {
		v := r.Value
		if obj, ok := v.(value.Object); ok && value.Equal(obj[syntheticID], value.String(r.Key)) {
			stripped := value.Clone(obj).(value.Object)
			delete(stripped, syntheticID)
			v = stripped
		}
		if fn(NewSnapshot(r.Key, v, nil)) {
			return true
		}
	}
	return false
}

// Keys lists child keys in ForEach order.
func (s *Snapshot) Keys() []string {
	recs := s.ordered()
	keys := make([]string, len(recs))
	for i, r := range recs {
		keys[i] = r.Key
	}
	return keys
}

func (s *Snapshot) ordered() []Record {
	obj, ok := s.val.(value.Object)
	if !ok {
		return nil
	}
	recs := Records(obj)
	slices.SortStableFunc(recs, s.cmp)
	return recs
}
