// Package delay simulates network latency for reads and write completions.
//
// A delay is configured once per database session in one of four shapes:
//
//	5                       fixed milliseconds
//	[100, 300]              range, uniform random draw per call
//	{min: 100, max: 300}    the same range spelled as an object
//	"mobile"                a named profile mapped to a preset range
//
// The delay only changes when a result is returned, never what is returned.
package delay

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Named profiles, in milliseconds.
const (
	ProfileRandom     = "random"
	ProfileWeakMobile = "weak-mobile"
	ProfileMobile     = "mobile"
	ProfileWiFi       = "wifi"
)

var profiles = map[string]Config{
	ProfileRandom:     Range(10, 1000),
	ProfileWeakMobile: Range(400, 900),
	ProfileMobile:     Range(300, 500),
	ProfileWiFi:       Range(10, 100),
}

// DefaultMillis is the delay used when none is configured.
const DefaultMillis = 5

// ErrUnknownProfile is returned for profile names not in Profiles().
var ErrUnknownProfile = errors.New("unknown delay profile")

// Config is a resolved delay: every call waits a duration drawn uniformly
// from [Min, Max].
type Config struct {
	Min time.Duration
	Max time.Duration
}

// Default returns the fixed default delay.
func Default() Config {
	return Fixed(DefaultMillis)
}

// None returns a zero delay.
func None() Config {
	return Config{}
}

// Fixed returns a delay of exactly ms milliseconds.
func Fixed(ms int) Config {
	d := time.Duration(ms) * time.Millisecond
	return Config{Min: d, Max: d}
}

// Range returns a delay drawn uniformly from [min, max] milliseconds.
// The bounds may be given in either order.
func Range(min, max int) Config {
	if max < min {
		min, max = max, min
	}
	return Config{Min: time.Duration(min) * time.Millisecond, Max: time.Duration(max) * time.Millisecond}
}

// Profile resolves a named profile. Names are case-insensitive.
func Profile(name string) (Config, error) {
	c, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Config{}, fmt.Errorf("%q (want one of %s): %w", name, strings.Join(Profiles(), ", "), ErrUnknownProfile)
	}
	return c, nil
}

// Profiles lists the profile names, sorted.
func Profiles() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Parse accepts the loosely typed forms used in config files and scenarios:
// a number, a two-element list, a map with min and max, or a profile name.
func Parse(v any) (Config, error) {
	switch val := v.(type) {
	case nil:
		return Default(), nil
	case int:
		return Fixed(val), nil
	case float64:
		return Fixed(int(val)), nil
	case string:
		return Profile(val)
	case []any:
		if len(val) != 2 {
			return Config{}, fmt.Errorf("delay range needs 2 elements, got %d", len(val))
		}
		lo, err := millis(val[0])
		if err != nil {
			return Config{}, fmt.Errorf("delay range min: %w", err)
		}
		hi, err := millis(val[1])
		if err != nil {
			return Config{}, fmt.Errorf("delay range max: %w", err)
		}
		return Range(lo, hi), nil
	case map[string]any:
		lo, err := millis(val["min"])
		if err != nil {
			return Config{}, fmt.Errorf("delay min: %w", err)
		}
		hi, err := millis(val["max"])
		if err != nil {
			return Config{}, fmt.Errorf("delay max: %w", err)
		}
		return Range(lo, hi), nil
	default:
		return Config{}, fmt.Errorf("unsupported delay value of type %T", v)
	}
}

func millis(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("want milliseconds, got %T", v)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for every shape Parse accepts.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = parsed
	return nil
}

// IsZero reports whether the delay never waits.
func (c Config) IsZero() bool {
	return c.Max <= 0
}

// Draw picks the duration for one call.
func (c Config) Draw() time.Duration {
	if c.Max <= c.Min {
		return c.Min
	}
	return c.Min + time.Duration(rand.Int63n(int64(c.Max-c.Min+1)))
}

// String renders the delay for logs.
func (c Config) String() string {
	if c.Min == c.Max {
		return c.Min.String()
	}
	return fmt.Sprintf("%s-%s", c.Min, c.Max)
}

// Wait blocks for one drawn delay. It cannot be cancelled and always returns.
func (c Config) Wait() {
	d := c.Draw()
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	<-timer.C
}
