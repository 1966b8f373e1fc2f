package firemock

import (
	"fmt"

	"github.com/forest-fire/firemock-sub000/internal/listener"
	"github.com/forest-fire/firemock-sub000/internal/query"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Query is a read of a path with optional ordering, range filters and a
// limit. Builder methods return a new Query and leave the receiver as it
// was. A misuse error is kept on the query and returned by Err, Once and On.
type Query struct {
	db   *Database
	desc query.Descriptor
	err  error
}

func (q *Query) with(step func(query.Descriptor) (query.Descriptor, error)) *Query {
	if q.err != nil {
		return q
	}
	d, err := step(q.desc)
	if err == nil {
		err = d.Validate()
	}
	return &Query{db: q.db, desc: d, err: err}
}

// Path is the canonical path the query reads.
func (q *Query) Path() string {
	return q.desc.Path
}

// Err returns the first misuse error of the builder chain.
func (q *Query) Err() error {
	return q.err
}

// String renders the query, e.g. "/people.orderByChild(age).limitToFirst(1)".
func (q *Query) String() string {
	return q.desc.String()
}

// OrderByKey orders children by key. This is also the default.
func (q *Query) OrderByKey() *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		return d.OrderBy(query.ByKey{})
	})
}

// OrderByValue orders children by their scalar value.
func (q *Query) OrderByValue() *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		return d.OrderBy(query.ByValue{})
	})
}

// OrderByChild orders children by the named field. Nested fields use a
// path: "address/city".
func (q *Query) OrderByChild(name string) *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		return d.OrderBy(query.ByChild{Name: name})
	})
}

// EqualTo keeps children whose ordered field equals v. An optional key names
// the field to compare; it is an error under key ordering.
func (q *Query) EqualTo(v any, key ...string) *Query {
	return q.filter("equalTo", v, key, func(val value.Value, k string) query.Filter {
		return query.EqualTo{Value: val, Key: k}
	})
}

// StartAt keeps children at or after v.
func (q *Query) StartAt(v any, key ...string) *Query {
	return q.filter("startAt", v, key, func(val value.Value, k string) query.Filter {
		return query.StartAt{Value: val, Key: k}
	})
}

// EndAt keeps children at or before v.
func (q *Query) EndAt(v any, key ...string) *Query {
	return q.filter("endAt", v, key, func(val value.Value, k string) query.Filter {
		return query.EndAt{Value: val, Key: k}
	})
}

func (q *Query) filter(name string, v any, key []string, build func(value.Value, string) query.Filter) *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		val, err := value.From(v)
		if err != nil {
			return d, fmt.Errorf("%s: %w", name, err)
		}
		k := ""
		if len(key) > 0 {
			k = key[0]
		}
		return d.Where(build(val, k)), nil
	})
}

// LimitToFirst keeps the first n children in query order.
func (q *Query) LimitToFirst(n int) *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		return d.WithLimit(query.Limit{N: n})
	})
}

// LimitToLast keeps the last n children in query order.
func (q *Query) LimitToLast(n int) *Query {
	return q.with(func(d query.Descriptor) (query.Descriptor, error) {
		return d.WithLimit(query.Limit{N: n, Last: true})
	})
}

// Once reads the query result and returns it after the simulated delay.
// The result is taken before the delay starts. For child event types the
// same snapshot is returned. The wait cannot be cancelled.
func (q *Query) Once(et EventType) (*Snapshot, error) {
	if q.err != nil {
		return nil, q.err
	}
	if _, err := listener.ParseEventType(string(et)); err != nil {
		return nil, fmt.Errorf("once: %w", err)
	}
	snap, err := q.db.read(q.desc)
	q.db.wait()
	if err != nil {
		return nil, fmt.Errorf("once %s: %w", q.desc, err)
	}
	return snap, nil
}

// ListenOption configures a subscription.
type ListenOption func(*listenConfig)

type listenConfig struct {
	onCancel func()
	context  any
}

// OnCancel runs fn when the listener is removed with RemoveListener or Off.
func OnCancel(fn func()) ListenOption {
	return func(c *listenConfig) {
		c.onCancel = fn
	}
}

// ListenerContext tags the listener so RemoveListener can select it by
// context. The context must be comparable to be matched.
func ListenerContext(ctx any) ListenOption {
	return func(c *listenConfig) {
		c.context = ctx
	}
}

// On subscribes cb to et events for this query and returns the listener ID.
// Callbacks run synchronously inside the write that raised the event.
func (q *Query) On(et EventType, cb func(*Snapshot), opts ...ListenOption) (ID, error) {
	if q.err != nil {
		return "", q.err
	}
	if _, err := listener.ParseEventType(string(et)); err != nil {
		return "", fmt.Errorf("on: %w", err)
	}
	var cfg listenConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	id := q.db.registry.Add(q.desc, et, cb, cfg.onCancel, cfg.context)
	q.db.logger.Debug("listener added", "id", id, "event_type", et, "query", q.desc.String())
	return id, nil
}

// Off removes the listeners f selects from the whole database, not only
// those subscribed through this query. It is RemoveListener on the owning
// database.
func (q *Query) Off(f Filter) int {
	return q.db.RemoveListener(f)
}
