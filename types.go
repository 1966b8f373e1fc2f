package firemock

import (
	"github.com/forest-fire/firemock-sub000/internal/config"
	"github.com/forest-fire/firemock-sub000/internal/delay"
	"github.com/forest-fire/firemock-sub000/internal/listener"
	"github.com/forest-fire/firemock-sub000/internal/pushid"
	"github.com/forest-fire/firemock-sub000/internal/query"
)

// Snapshot is an immutable view of the data at a path or the result of a query.
type Snapshot = query.Snapshot

// EventType selects what a listener hears about.
type EventType = listener.EventType

// Event types.
const (
	Value        = listener.Value
	ChildAdded   = listener.ChildAdded
	ChildChanged = listener.ChildChanged
	ChildRemoved = listener.ChildRemoved
	ChildMoved   = listener.ChildMoved
)

// ID identifies a listener. On returns it; pass it in a Filter to remove
// that listener again.
type ID = listener.ID

// Filter selects listeners for RemoveListener. The zero Filter matches all.
type Filter = listener.Filter

// Delay is the simulated network latency of a session.
type Delay = delay.Config

// NoDelay never waits.
func NoDelay() Delay { return delay.None() }

// FixedDelay waits exactly ms milliseconds.
func FixedDelay(ms int) Delay { return delay.Fixed(ms) }

// RangeDelay waits a uniformly drawn duration between min and max milliseconds.
func RangeDelay(min, max int) Delay { return delay.Range(min, max) }

// ProfileDelay resolves a named profile such as "mobile" or "wifi".
func ProfileDelay(name string) (Delay, error) { return delay.Profile(name) }

// ParseDelay accepts any of the delay shapes: milliseconds, a [min, max]
// pair, a {min, max} map or a profile name.
func ParseDelay(v any) (Delay, error) { return delay.Parse(v) }

// Config is the YAML-loadable session configuration.
type Config = config.Config

// LoadConfig reads a YAML config file and completes it with defaults.
func LoadConfig(path string) (Config, error) { return config.Load(path) }

// PushIDGenerator produces keys for Push.
type PushIDGenerator = pushid.Generator

// SequentialPushIDs returns a generator of numbered keys ("push-0001", ...)
// for deterministic tests.
func SequentialPushIDs(prefix string) PushIDGenerator {
	return pushid.NewFixedGenerator(prefix)
}

// Query misuse errors. Compare with errors.Is.
var (
	ErrKeyWithOrderByKey = query.ErrKeyWithOrderByKey
	ErrOrderAlreadySet   = query.ErrOrderAlreadySet
	ErrLimitAlreadySet   = query.ErrLimitAlreadySet
	ErrInvalidLimit      = query.ErrInvalidLimit
	ErrUnknownEventType  = listener.ErrUnknownEventType
)
