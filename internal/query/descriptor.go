package query

import (
	"fmt"
	"slices"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Order selects how records are compared.
//
// This is a sealed interface: only ByKey, ByValue and ByChild implement it.
type Order interface {
	orderNode()
	fmt.Stringer
}

// ByKey orders records by their key.
type ByKey struct{}

// ByValue orders records by their (scalar) value.
type ByValue struct{}

// ByChild orders records by a named field, which may be a nested path.
type ByChild struct {
	Name string
}

func (ByKey) orderNode()   {}
func (ByValue) orderNode() {}
func (ByChild) orderNode() {}

func (ByKey) String() string     { return "orderByKey" }
func (ByValue) String() string   { return "orderByValue" }
func (o ByChild) String() string { return fmt.Sprintf("orderByChild(%s)", o.Name) }

// Filter narrows the ordered record set.
//
// This is a sealed interface: only EqualTo, StartAt and EndAt implement it.
// Key, when set, names the field compared against Value instead of the one
// implied by the ordering.
type Filter interface {
	filterNode()
	fmt.Stringer
}

// EqualTo keeps records whose target equals Value.
type EqualTo struct {
	Value value.Value
	Key   string
}

// StartAt keeps records whose target is at or after Value.
type StartAt struct {
	Value value.Value
	Key   string
}

// EndAt keeps records whose target is at or before Value.
type EndAt struct {
	Value value.Value
	Key   string
}

func (EqualTo) filterNode() {}
func (StartAt) filterNode() {}
func (EndAt) filterNode()   {}

func (f EqualTo) String() string { return filterString("equalTo", f.Value, f.Key) }
func (f StartAt) String() string { return filterString("startAt", f.Value, f.Key) }
func (f EndAt) String() string   { return filterString("endAt", f.Value, f.Key) }

func filterString(name string, v value.Value, key string) string {
	if key == "" {
		return fmt.Sprintf("%s(%s)", name, value.CanonicalString(v))
	}
	return fmt.Sprintf("%s(%s, %s)", name, value.CanonicalString(v), key)
}

// Limit slices the ordered, filtered records: the first N, or with Last the
// final N.
type Limit struct {
	N    int
	Last bool
}

// Descriptor describes a query rooted at Path.
// The zero Descriptor reads the root ordered by key.
type Descriptor struct {
	Path    string
	Order   Order // nil means ByKey
	Filters []Filter
	Limit   *Limit
}

// At returns a plain descriptor for path.
func At(path string) Descriptor {
	return Descriptor{Path: keypath.Normalize(path)}
}

// IsPlain reports whether d reads the path as is, without ordering, filters
// or limits.
func (d Descriptor) IsPlain() bool {
	return d.Order == nil && len(d.Filters) == 0 && d.Limit == nil
}

// EffectiveOrder returns the ordering, defaulting to ByKey.
func (d Descriptor) EffectiveOrder() Order {
	if d.Order == nil {
		return ByKey{}
	}
	return d.Order
}

// OrderBy returns a copy of d using o.
func (d Descriptor) OrderBy(o Order) (Descriptor, error) {
	if d.Order != nil {
		return d, fmt.Errorf("%s after %s: %w", o, d.Order, ErrOrderAlreadySet)
	}
	out := d.clone()
	out.Order = o
	return out, nil
}

// Where returns a copy of d with f appended.
func (d Descriptor) Where(f Filter) Descriptor {
	out := d.clone()
	out.Filters = append(out.Filters, f)
	return out
}

// WithLimit returns a copy of d limited by l.
func (d Descriptor) WithLimit(l Limit) (Descriptor, error) {
	if l.N < 0 {
		return d, fmt.Errorf("limit %d: %w", l.N, ErrInvalidLimit)
	}
	if d.Limit != nil {
		return d, fmt.Errorf("limit %d: %w", l.N, ErrLimitAlreadySet)
	}
	out := d.clone()
	out.Limit = &l
	return out, nil
}

// Validate checks combinations that can only be judged once the whole query
// is known.
func (d Descriptor) Validate() error {
	if _, byKey := d.EffectiveOrder().(ByKey); !byKey {
		return nil
	}
	for _, f := range d.Filters {
		if eq, ok := f.(EqualTo); ok && eq.Key != "" {
			return fmt.Errorf("%s: %w", eq, ErrKeyWithOrderByKey)
		}
	}
	return nil
}

// String renders the descriptor for logs and traces.
func (d Descriptor) String() string {
	s := "/" + d.Path
	if d.Order != nil {
		s += "." + d.Order.String()
	}
	for _, f := range d.Filters {
		s += "." + f.String()
	}
	if d.Limit != nil {
		if d.Limit.Last {
			s += fmt.Sprintf(".limitToLast(%d)", d.Limit.N)
		} else {
			s += fmt.Sprintf(".limitToFirst(%d)", d.Limit.N)
		}
	}
	return s
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Filters = slices.Clone(d.Filters)
	if d.Limit != nil {
		l := *d.Limit
		out.Limit = &l
	}
	return out
}
