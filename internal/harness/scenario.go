package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forest-fire/firemock-sub000/internal/config"
	"github.com/forest-fire/firemock-sub000/internal/listener"
)

// Scenario is a scripted run against a fresh database.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides session settings. The delay is always zero.
	Config config.Config `yaml:"config,omitempty"`

	// Seed is written at the root before listeners subscribe, without
	// notifying anyone.
	Seed map[string]any `yaml:"seed,omitempty"`

	// Listeners subscribe before the first step, in order.
	Listeners []ListenerSpec `yaml:"listeners,omitempty"`

	// Steps are the writes under test.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// ListenerSpec subscribes a named listener.
type ListenerSpec struct {
	Name  string     `yaml:"name"`
	Path  string     `yaml:"path"`
	Event string     `yaml:"event"`
	Query *QuerySpec `yaml:"query,omitempty"`
}

// QuerySpec describes ordering, filters and a limit.
type QuerySpec struct {
	// OrderBy is "key", "value" or "child:<name>".
	OrderBy      string `yaml:"order_by,omitempty"`
	EqualTo      *Bound `yaml:"equal_to,omitempty"`
	StartAt      *Bound `yaml:"start_at,omitempty"`
	EndAt        *Bound `yaml:"end_at,omitempty"`
	LimitToFirst *int   `yaml:"limit_to_first,omitempty"`
	LimitToLast  *int   `yaml:"limit_to_last,omitempty"`
}

// Bound is a filter threshold and the optional field it compares.
type Bound struct {
	Value any    `yaml:"value"`
	Key   string `yaml:"key,omitempty"`
}

// Step is one operation.
type Step struct {
	// Op is one of set, update, remove, push, multi, off.
	Op string `yaml:"op"`

	Path  string `yaml:"path,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Silent suppresses notification of a set.
	Silent bool `yaml:"silent,omitempty"`

	// Fields holds the fields of an update or the path: value entries of a
	// multi-path update.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Listener names the listener an off step removes. Empty removes all.
	Listener string `yaml:"listener,omitempty"`
}

// Step operations.
const (
	OpSet    = "set"
	OpUpdate = "update"
	OpRemove = "remove"
	OpPush   = "push"
	OpMulti  = "multi"
	OpOff    = "off"
)

// Assertion checks the trace or the final data.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Listener names the listener (event_count, event_keys, last_value).
	Listener string `yaml:"listener,omitempty"`

	// Count is the expected number of events (event_count).
	Count int `yaml:"count,omitempty"`

	// Keys is the expected key sequence (event_keys, query_order).
	Keys []string `yaml:"keys,omitempty"`

	// Path is where to read (final_state, query_order).
	Path string `yaml:"path,omitempty"`

	// Query shapes the read (query_order).
	Query *QuerySpec `yaml:"query,omitempty"`

	// Expect is the expected value (final_state, last_value).
	Expect any `yaml:"expect,omitempty"`

	// Absent expects nothing stored at Path (final_state).
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion types.
const (
	AssertEventCount = "event_count"
	AssertEventKeys  = "event_keys"
	AssertLastValue  = "last_value"
	AssertFinalState = "final_state"
	AssertQueryOrder = "query_order"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so typos
// like "assertion:" surface instead of silently skipping checks.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	names := map[string]bool{}
	for i, l := range s.Listeners {
		if l.Name == "" {
			return fmt.Errorf("listeners[%d]: name is required", i)
		}
		if names[l.Name] {
			return fmt.Errorf("listeners[%d]: duplicate name %q", i, l.Name)
		}
		names[l.Name] = true
		if _, err := listener.ParseEventType(l.Event); err != nil {
			return fmt.Errorf("listeners[%d]: %w", i, err)
		}
		if err := validateQuery(l.Query); err != nil {
			return fmt.Errorf("listeners[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(step, names); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, names); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step, listeners map[string]bool) error {
	switch step.Op {
	case OpSet, OpPush:
		if step.Path == "" && step.Op == OpPush {
			return fmt.Errorf("path is required for push")
		}
	case OpUpdate:
		if len(step.Fields) == 0 {
			return fmt.Errorf("fields are required for update")
		}
	case OpRemove:
		if step.Path == "" {
			return fmt.Errorf("path is required for remove")
		}
	case OpMulti:
		if len(step.Fields) == 0 {
			return fmt.Errorf("fields are required for multi")
		}
	case OpOff:
		if step.Listener != "" && !listeners[step.Listener] {
			return fmt.Errorf("unknown listener %q", step.Listener)
		}
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func validateQuery(q *QuerySpec) error {
	if q == nil {
		return nil
	}
	switch {
	case q.OrderBy == "", q.OrderBy == "key", q.OrderBy == "value":
	case strings.HasPrefix(q.OrderBy, "child:") && len(q.OrderBy) > len("child:"):
	default:
		return fmt.Errorf("invalid order_by %q: must be key, value or child:<name>", q.OrderBy)
	}
	return nil
}

func validateAssertion(a Assertion, listeners map[string]bool) error {
	switch a.Type {
	case AssertEventCount, AssertEventKeys, AssertLastValue:
		if a.Listener == "" {
			return fmt.Errorf("listener is required for %s", a.Type)
		}
		if !listeners[a.Listener] {
			return fmt.Errorf("unknown listener %q", a.Listener)
		}
		if a.Type == AssertEventCount && a.Count < 0 {
			return fmt.Errorf("count must be non-negative for event_count")
		}
	case AssertFinalState:
		if a.Expect == nil && !a.Absent {
			return fmt.Errorf("expect or absent is required for final_state")
		}
	case AssertQueryOrder:
		return validateQuery(a.Query)
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
