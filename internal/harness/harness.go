package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	firemock "github.com/forest-fire/firemock-sub000"
	"github.com/forest-fire/firemock-sub000/internal/listener"
)

// Harness runs one scenario against its own database.
type Harness struct {
	db        *firemock.Database
	names     map[firemock.ID]string
	ids       map[string]firemock.ID
	snapshots map[string][]*firemock.Snapshot
	result    *Result
	logger    *slog.Logger
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario in a fresh database and evaluates its assertions.
// An error means the scenario could not be executed; failed assertions are
// reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		names:     map[firemock.ID]string{},
		ids:       map[string]firemock.ID{},
		snapshots: map[string][]*firemock.Snapshot{},
		result:    NewResult(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.db = firemock.New(
		firemock.WithConfig(scenario.Config),
		firemock.WithDelay(firemock.NoDelay()),
		firemock.WithPushIDs(firemock.SequentialPushIDs("")),
		firemock.WithLogger(h.logger),
		firemock.WithEventObserver(h.record),
	)

	if len(scenario.Seed) > 0 {
		if err := h.db.Set("", scenario.Seed, true); err != nil {
			return nil, fmt.Errorf("failed to seed: %w", err)
		}
	}

	for _, spec := range scenario.Listeners {
		if err := h.subscribe(spec); err != nil {
			return nil, fmt.Errorf("listener %q: %w", spec.Name, err)
		}
	}

	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		h.logger.Info("step completed", "step", i, "op", step.Op, "path", step.Path)
	}

	h.result.State = h.db.Get("")
	for _, msg := range EvaluateAssertions(h, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// record appends a delivery to the trace.
func (h *Harness) record(ev firemock.Event) {
	h.result.Trace = append(h.result.Trace, TraceEvent{
		Seq:      ev.Seq,
		Listener: h.names[ev.Listener],
		Type:     string(ev.Type),
		Key:      ev.Key,
		Value:    ev.Value,
		Prior:    ev.Prior,
	})
}

func (h *Harness) subscribe(spec ListenerSpec) error {
	et, err := listener.ParseEventType(spec.Event)
	if err != nil {
		return err
	}
	q, err := buildQuery(h.db.Ref(spec.Path).Query, spec.Query)
	if err != nil {
		return err
	}
	name := spec.Name
	id, err := q.On(et, func(s *firemock.Snapshot) {
		h.snapshots[name] = append(h.snapshots[name], s)
	})
	if err != nil {
		return err
	}
	h.names[id] = name
	h.ids[name] = id
	return nil
}

func (h *Harness) execute(step Step) error {
	switch step.Op {
	case OpSet:
		return h.db.Set(step.Path, step.Value, step.Silent)
	case OpUpdate:
		return h.db.Update(step.Path, step.Fields)
	case OpRemove:
		h.db.Remove(step.Path)
		return nil
	case OpPush:
		_, err := h.db.Push(step.Path, step.Value)
		return err
	case OpMulti:
		return h.db.MultiPathUpdate(step.Fields)
	case OpOff:
		if step.Listener == "" {
			h.db.Off()
			return nil
		}
		h.db.RemoveListener(firemock.Filter{ID: h.ids[step.Listener]})
		return nil
	}
	return fmt.Errorf("unknown op %q", step.Op)
}

// buildQuery applies spec to q.
func buildQuery(q *firemock.Query, spec *QuerySpec) (*firemock.Query, error) {
	if spec == nil {
		return q, nil
	}
	switch {
	case spec.OrderBy == "key":
		q = q.OrderByKey()
	case spec.OrderBy == "value":
		q = q.OrderByValue()
	case strings.HasPrefix(spec.OrderBy, "child:"):
		q = q.OrderByChild(strings.TrimPrefix(spec.OrderBy, "child:"))
	}
	if b := spec.EqualTo; b != nil {
		q = q.EqualTo(b.Value, b.Key)
	}
	if b := spec.StartAt; b != nil {
		q = q.StartAt(b.Value, b.Key)
	}
	if b := spec.EndAt; b != nil {
		q = q.EndAt(b.Value, b.Key)
	}
	if spec.LimitToFirst != nil {
		q = q.LimitToFirst(*spec.LimitToFirst)
	}
	if spec.LimitToLast != nil {
		q = q.LimitToLast(*spec.LimitToLast)
	}
	return q, q.Err()
}
