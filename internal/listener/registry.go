// Package listener keeps track of subscriptions: which callback wants which
// event type for which path or query.
package listener

import (
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/forest-fire/firemock-sub000/internal/query"
)

// ID identifies a registered listener. Callbacks are funcs and cannot be
// compared, so the ID returned at registration stands in for the callback
// when unsubscribing.
type ID string

// Callback receives the snapshot for an event.
type Callback func(snap *query.Snapshot)

// Listener is one subscription.
type Listener struct {
	ID        ID
	Query     query.Descriptor
	EventType EventType
	Callback  Callback
	OnCancel  func()
	Context   any
}

// Path is the canonical path the listener watches.
func (l *Listener) Path() string {
	return l.Query.Path
}

// Filter selects listeners to remove. Zero fields match everything:
// an empty EventType matches all types, an empty ID all callbacks, and a nil
// Context any context. Fields combine, so a Context without an ID selects
// every listener of the type registered with that context.
type Filter struct {
	EventType EventType
	ID        ID
	Context   any
}

func (f Filter) matches(l *Listener) bool {
	if f.EventType != "" && l.EventType != f.EventType {
		return false
	}
	if f.ID != "" && l.ID != f.ID {
		return false
	}
	if f.Context != nil && !sameContext(f.Context, l.Context) {
		return false
	}
	return true
}

func sameContext(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Registry holds listeners in registration order.
// Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	listeners []*Listener
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a listener and returns its ID.
func (r *Registry) Add(q query.Descriptor, et EventType, cb Callback, onCancel func(), context any) ID {
	l := &Listener{
		ID:        ID(uuid.Must(uuid.NewV7()).String()),
		Query:     q,
		EventType: et,
		Callback:  cb,
		OnCancel:  onCancel,
		Context:   context,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
	return l.ID
}

// Remove detaches every listener matching f and returns them. Callers run
// the OnCancel hooks (see Cancel) once they hold no locks, since a hook may
// write to the database.
func (r *Registry) Remove(f Filter) []*Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Listener
	kept := r.listeners[:0]
	for _, l := range r.listeners {
		if f.matches(l) {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	// Clear the tail so removed listeners can be collected.
	clear(r.listeners[len(kept):])
	r.listeners = kept
	return removed
}

// RemoveAll detaches every listener.
func (r *Registry) RemoveAll() []*Listener {
	return r.Remove(Filter{})
}

// Count returns the number of registered listeners.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// CountType returns the number of listeners for one event type.
func (r *Registry) CountType(et EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.listeners {
		if l.EventType == et {
			n++
		}
	}
	return n
}

// Paths returns the distinct watched paths, sorted. With types given, only
// listeners of those types are considered.
func (r *Registry) Paths(types ...EventType) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, l := range r.listeners {
		if len(types) > 0 && !slices.Contains(types, l.EventType) {
			continue
		}
		if !seen[l.Path()] {
			seen[l.Path()] = true
			out = append(out, l.Path())
		}
	}
	slices.Sort(out)
	return out
}

// List returns a copy of the listener list. Dispatch iterates this copy so
// callbacks may subscribe or unsubscribe while events are delivered.
func (r *Registry) List() []*Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.listeners)
}

// Get looks a listener up by ID.
func (r *Registry) Get(id ID) (*Listener, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.listeners {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// Cancel runs the OnCancel hook of each listener that has one and returns
// how many hooks ran.
func Cancel(removed []*Listener) int {
	n := 0
	for _, l := range removed {
		if l.OnCancel != nil {
			l.OnCancel()
			n++
		}
	}
	return n
}
