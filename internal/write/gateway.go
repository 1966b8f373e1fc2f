// Package write applies mutations to the store and drives notification.
//
// Every mutation copies the store first so the notification engine can diff
// the state before and after. Writes that change nothing are dropped before
// notification. Multi-path updates apply all entries silently and then run a
// single grouped notification pass against the one copy taken up front.
//
// The gateway's lock covers the store while a write applies and its events
// are planned. Callbacks run after the lock is released, so a callback may
// write again; that nested write completes before the outer call returns.
package write

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/forest-fire/firemock-sub000/internal/keypath"
	"github.com/forest-fire/firemock-sub000/internal/notify"
	"github.com/forest-fire/firemock-sub000/internal/pathstore"
	"github.com/forest-fire/firemock-sub000/internal/pushid"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// Gateway is the only way data changes.
type Gateway struct {
	mu       sync.Mutex
	store    *pathstore.Store
	engine   *notify.Engine
	ids      pushid.Generator
	stampIDs bool
	logger   *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPushIDs sets the push key generator. Default: ULIDs.
func WithPushIDs(g pushid.Generator) Option {
	return func(gw *Gateway) {
		gw.ids = g
	}
}

// WithStampIDs makes Push add an "id" field equal to the key to objects.
func WithStampIDs(on bool) Option {
	return func(gw *Gateway) {
		gw.stampIDs = on
	}
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(gw *Gateway) {
		gw.logger = l
	}
}

// New creates a gateway over store, notifying through engine.
func New(store *pathstore.Store, engine *notify.Engine, opts ...Option) *Gateway {
	gw := &Gateway{
		store:  store,
		engine: engine,
		ids:    pushid.NewULIDGenerator(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(gw)
	}
	return gw
}

// Get reads the value at path; nil when nothing is stored.
func (g *Gateway) Get(path string) value.Value {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, _ := g.store.Get(path)
	return v
}

// Exists reports whether anything is stored at path.
func (g *Gateway) Exists(path string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.Exists(path)
}

// Clear empties the store without notifying anyone.
func (g *Gateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.store.Clear()
}

// Reset clears the store and runs detach while the write lock is held, so no
// write lands between the two. Nothing is notified.
func (g *Gateway) Reset(detach func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.store.Clear()
	if detach != nil {
		detach()
	}
}

// Set writes v at path; nil deletes. It reports whether the store changed.
// Unless silent, listeners are notified of {path: v}.
func (g *Gateway) Set(path string, v value.Value, silent bool) bool {
	path = keypath.Normalize(path)

	g.mu.Lock()
	before := g.store.Copy()
	if !g.apply(path, v) {
		g.mu.Unlock()
		g.logger.Debug("write skipped, value unchanged", "path", path)
		return false
	}
	var plan []notify.Dispatch
	if !silent {
		plan = g.engine.Plan(map[string]value.Value{path: v}, before, g.store)
	}
	g.mu.Unlock()

	g.logger.Debug("set", "path", path, "silent", silent, "events", len(plan))
	g.engine.Deliver(plan)
	return true
}

// apply mutates the store. Callers hold g.mu.
func (g *Gateway) apply(path string, v value.Value) bool {
	old, _ := g.store.Get(path)
	if keypath.IsRoot(path) {
		old, v = absentIfEmpty(old), absentIfEmpty(v)
	}
	if value.Equal(old, v) {
		return false
	}
	if v == nil {
		g.store.Delete(path)
	} else {
		g.store.Set(path, v)
	}
	return true
}

// absentIfEmpty maps an empty object to nil. The root always reads as an
// object, so an empty root and no data are the same state.
func absentIfEmpty(v value.Value) value.Value {
	if obj, ok := v.(value.Object); ok && len(obj) == 0 {
		return nil
	}
	return v
}

// Update merges the fields of partial onto the value at path, leaving other
// fields untouched. A nil field removes it. Keys holding a separator address
// deeper locations and turn the call into a multi-path update relative to
// path. Reports whether the store changed.
func (g *Gateway) Update(path string, partial value.Object) bool {
	path = keypath.Normalize(path)
	for k := range partial {
		if len(keypath.Segments(k)) > 1 {
			changes := make(map[string]value.Value, len(partial))
			for key, v := range partial {
				changes[keypath.Join(path, key)] = v
			}
			return g.MultiPathUpdate(changes) > 0
		}
	}

	current := g.Get(path)
	if unchanged(current, partial) {
		g.logger.Debug("update skipped, fields unchanged", "path", path)
		return false
	}
	return g.Set(path, value.Merge(current, partial, 1), false)
}

// unchanged reports whether every field of partial already holds its value.
func unchanged(current value.Value, partial value.Object) bool {
	obj, _ := current.(value.Object)
	for k, v := range partial {
		if !value.Equal(obj[k], v) {
			return false
		}
	}
	return true
}

// Remove deletes the value at path. Nothing happens when nothing is stored
// there; an empty root counts as nothing.
func (g *Gateway) Remove(path string) bool {
	if !g.Exists(path) {
		return false
	}
	return g.Set(path, nil, false)
}

// Push stores v under a new key below path and returns the key.
func (g *Gateway) Push(path string, v value.Value) string {
	key := g.ids.Generate()
	if obj, ok := v.(value.Object); ok && g.stampIDs {
		stamped := value.Clone(obj).(value.Object)
		stamped["id"] = value.String(key)
		v = stamped
	}
	g.Set(keypath.Join(path, key), v, false)
	return key
}

// MultiPathUpdate applies every path=value entry, then notifies once for all
// entries that changed the store. Entries apply in path order, so a later,
// deeper path lands on top of an earlier ancestor write. Returns the number
// of entries that changed the store.
func (g *Gateway) MultiPathUpdate(changes map[string]value.Value) int {
	paths := make([]string, 0, len(changes))
	normalized := make(map[string]value.Value, len(changes))
	for p, v := range changes {
		np := keypath.Normalize(p)
		paths = append(paths, np)
		normalized[np] = v
	}
	slices.Sort(paths)

	g.mu.Lock()
	before := g.store.Copy()
	applied := make(map[string]value.Value, len(paths))
	for _, p := range paths {
		if g.apply(p, normalized[p]) {
			applied[p] = normalized[p]
		}
	}
	plan := g.engine.Plan(applied, before, g.store)
	g.mu.Unlock()

	g.logger.Debug("multi-path update", "paths", len(paths), "changed", len(applied), "events", len(plan))
	g.engine.Deliver(plan)
	return len(applied)
}
