package firemock

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/forest-fire/firemock-sub000/internal/config"
	"github.com/forest-fire/firemock-sub000/internal/delay"
	"github.com/forest-fire/firemock-sub000/internal/listener"
	"github.com/forest-fire/firemock-sub000/internal/notify"
	"github.com/forest-fire/firemock-sub000/internal/pathstore"
	"github.com/forest-fire/firemock-sub000/internal/pushid"
	"github.com/forest-fire/firemock-sub000/internal/query"
	"github.com/forest-fire/firemock-sub000/internal/value"
	"github.com/forest-fire/firemock-sub000/internal/write"
)

// Database is one emulated database session: a store and the listeners
// subscribed to it.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks run on
// the goroutine that issued the write.
type Database struct {
	store    *pathstore.Store
	registry *listener.Registry
	engine   *notify.Engine
	gateway  *write.Gateway
	logger   *slog.Logger

	mu    sync.RWMutex // guards delay and auth
	delay delay.Config
	auth  AuthProvider

	// construction-time settings
	ids        pushid.Generator
	stampIDs   bool
	sendEvents bool
	observer   func(Event)
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(db *Database) {
		db.logger = l
	}
}

// WithDelay sets the simulated latency of Once and reference writes.
// Default: 5ms.
func WithDelay(d Delay) Option {
	return func(db *Database) {
		db.delay = d
	}
}

// WithPushIDs sets the push key generator. Default: monotonic ULIDs.
func WithPushIDs(g PushIDGenerator) Option {
	return func(db *Database) {
		db.ids = g
	}
}

// WithStampIDs makes Push add an "id" field equal to the new key to pushed
// objects.
func WithStampIDs(on bool) Option {
	return func(db *Database) {
		db.stampIDs = on
	}
}

// WithAuth plugs in an auth emulation.
func WithAuth(a AuthProvider) Option {
	return func(db *Database) {
		db.auth = a
	}
}

// WithConfig applies a loaded configuration. Unset fields keep their
// defaults.
func WithConfig(c Config) Option {
	return func(db *Database) {
		c = c.Complete()
		db.delay = *c.Delay
		db.sendEvents = *c.SendEvents
		db.stampIDs = *c.StampPushIDs
	}
}

// WithEventObserver registers fn to see every delivery just before the
// listener's callback runs.
func WithEventObserver(fn func(Event)) Option {
	return func(db *Database) {
		db.observer = fn
	}
}

// New creates an empty database session.
func New(opts ...Option) *Database {
	defaults := config.Default()
	db := &Database{
		store:      pathstore.New(),
		registry:   listener.NewRegistry(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		delay:      *defaults.Delay,
		ids:        pushid.NewULIDGenerator(),
		stampIDs:   *defaults.StampPushIDs,
		sendEvents: *defaults.SendEvents,
	}
	for _, opt := range opts {
		opt(db)
	}

	engineOpts := []notify.Option{notify.WithLogger(db.logger)}
	if db.observer != nil {
		observer := db.observer
		engineOpts = append(engineOpts, notify.WithObserver(func(d notify.Dispatch) {
			observer(eventFrom(d))
		}))
	}
	db.engine = notify.New(db.registry, engineOpts...)
	db.engine.SetSendEvents(db.sendEvents)

	db.gateway = write.New(db.store, db.engine,
		write.WithPushIDs(db.ids),
		write.WithStampIDs(db.stampIDs),
		write.WithLogger(db.logger),
	)
	return db
}

// Ref returns a reference to path. Paths may use "/" or "." separators.
func (db *Database) Ref(path string) *Reference {
	return &Reference{Query: &Query{db: db, desc: query.At(path)}}
}

// Get returns the value at path as plain Go data: map[string]any, float64,
// string or bool. Nothing stored reads as nil.
func (db *Database) Get(path string) any {
	return value.Export(db.gateway.Get(path))
}

// Exists reports whether anything is stored at path.
func (db *Database) Exists(path string) bool {
	return db.gateway.Exists(path)
}

// Set writes v at path, replacing what was there. A nil v removes the path.
// Slices are stored as objects keyed by index. Listeners are notified unless
// silent is true.
func (db *Database) Set(path string, v any, silent ...bool) error {
	val, err := value.From(v)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	db.gateway.Set(path, val, len(silent) > 0 && silent[0])
	return nil
}

// Update overwrites only the named fields of the object at path. A nil
// field removes it. Field names holding a separator address deeper paths.
func (db *Database) Update(path string, fields map[string]any) error {
	partial, err := fieldsFrom(fields)
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	db.gateway.Update(path, partial)
	return nil
}

// Remove deletes the value at path. Removing nothing is not an error.
func (db *Database) Remove(path string) {
	db.gateway.Remove(path)
}

// Push stores v under a new, time-ordered key below path and returns the key.
func (db *Database) Push(path string, v any) (string, error) {
	val, err := value.From(v)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	return db.gateway.Push(path, val), nil
}

// MultiPathUpdate writes every path: value entry, then notifies listeners
// once for the whole batch. A nil value removes its path.
func (db *Database) MultiPathUpdate(changes map[string]any) error {
	vals, err := fieldsFrom(changes)
	if err != nil {
		return fmt.Errorf("multi-path update: %w", err)
	}
	db.gateway.MultiPathUpdate(vals)
	return nil
}

// fieldsFrom converts write input, keeping nil entries as deletions.
func fieldsFrom(fields map[string]any) (value.Object, error) {
	out := make(value.Object, len(fields))
	for k, v := range fields {
		val, err := value.From(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// RemoveListener detaches every listener f matches, runs the cancel hooks
// of those that have one and returns how many hooks ran. Unknown listeners
// are ignored.
func (db *Database) RemoveListener(f Filter) int {
	removed := db.registry.Remove(f)
	n := listener.Cancel(removed)
	db.logger.Debug("listeners removed", "event_type", f.EventType, "id", f.ID, "count", len(removed), "cancelled", n)
	return n
}

// Off detaches every listener and returns how many cancel hooks ran.
func (db *Database) Off() int {
	return db.RemoveListener(Filter{})
}

// Reset empties the store and drops every listener in one step. Cancel
// hooks are not run and nothing is notified.
func (db *Database) Reset() {
	db.gateway.Reset(func() {
		db.registry.RemoveAll()
	})
	db.engine.Clock().Reset()
	db.logger.Debug("reset")
}

// ListenerCount returns the number of registered listeners, optionally only
// those of the given types.
func (db *Database) ListenerCount(types ...EventType) int {
	if len(types) == 0 {
		return db.registry.Count()
	}
	n := 0
	for _, et := range types {
		n += db.registry.CountType(et)
	}
	return n
}

// ListenerPaths returns the distinct watched paths, sorted, optionally only
// for listeners of the given types.
func (db *Database) ListenerPaths(types ...EventType) []string {
	return db.registry.Paths(types...)
}

// SetSendEvents turns event delivery on or off for the whole session.
// Seeding code turns it off to load data without waking listeners.
func (db *Database) SetSendEvents(on bool) {
	db.engine.SetSendEvents(on)
	db.logger.Debug("send events", "on", on)
}

// SendEvents reports whether events are delivered.
func (db *Database) SendEvents() bool {
	return db.engine.SendEvents()
}

// SetDelay changes the simulated latency.
func (db *Database) SetDelay(d Delay) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.delay = d
}

// Delay returns the simulated latency.
func (db *Database) Delay() Delay {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.delay
}

// SetAuth plugs in an auth emulation; nil removes it.
func (db *Database) SetAuth(a AuthProvider) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.auth = a
}

// CurrentUser asks the auth emulation who is signed in. Without one, nobody
// is.
func (db *Database) CurrentUser() (User, bool) {
	db.mu.RLock()
	a := db.auth
	db.mu.RUnlock()
	if a == nil {
		return User{}, false
	}
	return a.CurrentUser()
}

// wait blocks for one drawn delay.
func (db *Database) wait() {
	db.Delay().Wait()
}

// read runs d against the current store.
func (db *Database) read(d query.Descriptor) (*Snapshot, error) {
	return query.Run(d, db.gateway.Get(d.Path))
}
