package notify

import (
	"io"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/listener"
	"github.com/forest-fire/firemock-sub000/internal/pathstore"
	"github.com/forest-fire/firemock-sub000/internal/query"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Engine plans and delivers events for the listeners in a registry.
type Engine struct {
	registry   *listener.Registry
	clock      *Clock
	sendEvents atomic.Bool
	logger     *slog.Logger
	observer   func(Dispatch)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithObserver registers fn to see every dispatch just before its callback
// runs. Used to record event traces.
func WithObserver(fn func(Dispatch)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// New creates an engine over registry with sending enabled.
func New(registry *listener.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		clock:    NewClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	e.sendEvents.Store(true)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSendEvents turns delivery on or off for every listener. While off,
// Plan returns nothing; used when bulk-seeding data.
func (e *Engine) SetSendEvents(on bool) {
	e.sendEvents.Store(on)
}

// SendEvents reports whether delivery is on.
func (e *Engine) SendEvents() bool {
	return e.sendEvents.Load()
}

// Clock exposes the dispatch sequence clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Notify plans and delivers in one step. Use it only when no lock guards the
// stores; otherwise call Plan under the lock and Deliver after releasing it.
func (e *Engine) Notify(changes map[string]value.Value, before, after *pathstore.Store) int {
	return e.Deliver(e.Plan(changes, before, after))
}

// Plan works out the events a write raises. changes maps canonical paths to
// the values written (nil for deletions); before is a copy of the store taken
// ahead of the write and after is the store once it is applied.
func (e *Engine) Plan(changes map[string]value.Value, before, after *pathstore.Store) []Dispatch {
	if !e.SendEvents() || len(changes) == 0 {
		return nil
	}
	paths := make([]string, 0, len(changes))
	for p := range changes {
		paths = append(paths, keypath.Normalize(p))
	}
	slices.Sort(paths)

	var out []Dispatch
	for _, l := range e.registry.List() {
		group, ok := groupFor(l, paths)
		if !ok {
			continue
		}
		for _, we := range e.resolve(l, group, before, after) {
			if ev := decide(l, we, before, after, e.logger); ev != nil {
				out = append(out, Dispatch{Listener: l, Event: ev})
			}
		}
	}
	return out
}

// Deliver stamps and runs each dispatch in order and returns how many ran.
func (e *Engine) Deliver(ds []Dispatch) int {
	for _, d := range ds {
		e.dispatch(d)
	}
	return len(ds)
}

// dispatch is the single point where events reach callbacks.
func (e *Engine) dispatch(d Dispatch) {
	d.Seq = e.clock.Next()
	attrs := []any{"seq", d.Seq, "listener", d.Listener.ID, "path", d.Listener.Path()}
	switch ev := d.Event.(type) {
	case ValueEvent:
		attrs = append(attrs, "type", listener.Value)
	case ChildAdded:
		attrs = append(attrs, "type", listener.ChildAdded, "key", ev.Snap.Key())
	case ChildChanged:
		attrs = append(attrs, "type", listener.ChildChanged, "key", ev.Snap.Key())
	case ChildRemoved:
		attrs = append(attrs, "type", listener.ChildRemoved, "key", ev.Snap.Key())
	case ChildMoved:
		attrs = append(attrs, "type", listener.ChildMoved, "key", ev.Snap.Key())
	default:
		e.logger.Error("unknown event kind", "event", d.Event)
		return
	}
	e.logger.Debug("dispatch", attrs...)
	if e.observer != nil {
		e.observer(d)
	}
	if d.Listener.Callback != nil {
		d.Listener.Callback(d.Event.Snapshot())
	}
}

// changeGroup is everything one write did at or below a listener's path.
type changeGroup struct {
	exact    bool     // a change landed on the listener path itself
	children []string // immediate children implicated by deeper changes
}

// groupFor folds the changed paths relevant to l into one group.
func groupFor(l *listener.Listener, paths []string) (changeGroup, bool) {
	var g changeGroup
	matched := false
	seen := map[string]bool{}
	for _, p := range paths {
		rel, ok := keypath.Relative(l.Path(), p)
		if !ok {
			continue
		}
		matched = true
		if len(rel) == 0 {
			g.exact = true
			continue
		}
		if !seen[rel[0]] {
			seen[rel[0]] = true
			g.children = append(g.children, rel[0])
		}
	}
	return g, matched
}

// resolve turns a listener's change group into watcher events.
func (e *Engine) resolve(l *listener.Listener, g changeGroup, before, after *pathstore.Store) []WatcherEvent {
	base := WatcherEvent{
		ListenerID:   l.ID,
		ListenerPath: l.Path(),
		EventType:    l.EventType,
	}
	if l.EventType == listener.Value {
		we := base
		we.Key = keypath.Key(l.Path())
		we.Value, _ = after.Get(l.Path())
		we.Prior, _ = before.Get(l.Path())
		return []WatcherEvent{we}
	}

	keys := g.children
	if g.exact {
		keys = childKeys(l.Path(), before, after)
	}
	slices.SortFunc(keys, value.CompareKeys)

	var out []WatcherEvent
	for _, k := range keys {
		p := keypath.Join(l.Path(), k)
		we := base
		we.Key = k
		we.Value, _ = after.Get(p)
		we.Prior, _ = before.Get(p)
		if value.Equal(we.Value, we.Prior) {
			continue
		}
		out = append(out, we)
	}
	return out
}

// childKeys lists the keys present at path before or after the write.
func childKeys(path string, before, after *pathstore.Store) []string {
	seen := map[string]bool{}
	var keys []string
	for _, s := range []*pathstore.Store{before, after} {
		v, _ := s.Get(path)
		obj, ok := v.(value.Object)
		if !ok {
			continue
		}
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// decide applies the dispatch table. It returns nil when the listener should
// not hear about we.
func decide(l *listener.Listener, we WatcherEvent, before, after *pathstore.Store, logger *slog.Logger) Event {
	deleted := we.Value == nil
	existed := we.Prior != nil

	switch l.EventType {
	case listener.Value:
		snap, err := readFor(l, we.Value)
		if err != nil {
			logger.Warn("value listener query failed", "listener", l.ID, "error", err)
			return nil
		}
		return ValueEvent{Snap: snap, Prior: we.Prior}

	case listener.ChildRemoved:
		if !deleted || !existed || !inWindow(l, we.Key, before) {
			return nil
		}
		return ChildRemoved{Snap: query.NewSnapshot(we.Key, we.Prior, nil)}

	case listener.ChildAdded:
		if deleted || existed || !inWindow(l, we.Key, after) {
			return nil
		}
		return ChildAdded{Snap: query.NewSnapshot(we.Key, we.Value, nil)}

	case listener.ChildChanged:
		if deleted || !inWindow(l, we.Key, after) {
			return nil
		}
		return ChildChanged{Snap: query.NewSnapshot(we.Key, we.Value, nil), Prior: we.Prior}

	case listener.ChildMoved:
		if deleted || existed || !inWindow(l, we.Key, after) {
			return nil
		}
		return ChildMoved{Snap: query.NewSnapshot(we.Key, we.Value, nil)}
	}
	return nil
}

// readFor builds the value snapshot a listener sees: the raw value for plain
// listeners, the query result otherwise.
func readFor(l *listener.Listener, v value.Value) (*query.Snapshot, error) {
	if l.Query.IsPlain() {
		return query.NewSnapshot(keypath.Key(l.Path()), v, nil), nil
	}
	return query.Run(l.Query, v)
}

// inWindow reports whether key is part of the listener's query result in s.
// Plain listeners see every child.
func inWindow(l *listener.Listener, key string, s *pathstore.Store) bool {
	if l.Query.IsPlain() {
		return true
	}
	v, _ := s.Get(l.Path())
	snap, err := query.Run(l.Query, v)
	if err != nil {
		return false
	}
	return snap.HasChild(key)
}
