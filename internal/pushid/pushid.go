// Package pushid generates keys for list-style inserts.
//
// Keys sort lexically in creation order: a key generated later always
// compares greater than one generated earlier by the same generator, even
// within the same millisecond.
package pushid

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces push keys.
// Implemented by ULIDGenerator (default) and FixedGenerator (tests).
type Generator interface {
	Generate() string
}

// ULIDGenerator produces ULIDs: a 48-bit millisecond timestamp followed by
// monotonic entropy, encoded in Crockford base32 so byte order matches time
// order.
//
// Thread-safety: safe for concurrent use via internal mutex.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDGenerator creates a generator reading the wall clock.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Generate returns the next key.
//
// Panics if the monotonic entropy overflows within one millisecond, which
// would take 2^80 keys.
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}

// FixedGenerator returns numbered keys with a prefix: "push-0001",
// "push-0002", ... The zero padding keeps lexical order equal to creation
// order up to 9999 keys.
//
// This keeps event traces and golden files deterministic.
type FixedGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedGenerator creates a generator using prefix ("push" when empty).
func NewFixedGenerator(prefix string) *FixedGenerator {
	if prefix == "" {
		prefix = "push"
	}
	return &FixedGenerator{prefix: prefix}
}

// Generate returns the next numbered key.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
