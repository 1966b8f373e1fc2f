package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	firemock "github.com/forest-fire/firemock-sub000"
	"github.com/forest-fire/firemock-sub000/internal/value"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Diff     string       // Optional line diff of expected and actual data
	Trace    []TraceEvent // Deliveries relevant to the assertion
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.Diff != "" {
		fmt.Fprintf(&buf, "\nDiff (-expected +actual):\n%s\n", e.Diff)
	}
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s key=%q\n", ev.Seq, ev.Listener, ev.Type, ev.Key)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(h, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(h *Harness, a Assertion) error {
	switch a.Type {
	case AssertEventCount:
		return assertEventCount(h.result, a)
	case AssertEventKeys:
		return assertEventKeys(h.result, a)
	case AssertLastValue:
		return assertLastValue(h, a)
	case AssertFinalState:
		return assertFinalState(h.db, a)
	case AssertQueryOrder:
		return assertQueryOrder(h.db, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertEventCount checks how many events a listener received.
func assertEventCount(r *Result, a Assertion) error {
	got := r.Received(a.Listener)
	if len(got) != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events for %s", a.Count, a.Listener),
			Actual:   fmt.Sprintf("%d events", len(got)),
			Trace:    got,
		}
	}
	return nil
}

// assertEventKeys checks the snapshot keys a listener received, in order.
func assertEventKeys(r *Result, a Assertion) error {
	got := r.Received(a.Listener)
	keys := make([]string, len(got))
	for i, ev := range got {
		keys[i] = ev.Key
	}
	if !slices.Equal(keys, a.Keys) {
		return &AssertionError{
			Type:     AssertEventKeys,
			Expected: fmt.Sprintf("keys %v for %s", a.Keys, a.Listener),
			Actual:   fmt.Sprintf("keys %v", keys),
			Trace:    got,
		}
	}
	return nil
}

// assertLastValue compares the last snapshot a listener received.
func assertLastValue(h *Harness, a Assertion) error {
	snaps := h.snapshots[a.Listener]
	if len(snaps) == 0 {
		return &AssertionError{
			Type:     AssertLastValue,
			Expected: fmt.Sprintf("at least one event for %s", a.Listener),
			Actual:   "no events",
		}
	}
	want, err := value.From(a.Expect)
	if err != nil {
		return fmt.Errorf("last_value expect: %w", err)
	}
	got := snaps[len(snaps)-1].Val()
	if !value.Equal(want, got) {
		return &AssertionError{
			Type:     AssertLastValue,
			Expected: value.CanonicalString(want),
			Actual:   value.CanonicalString(got),
			Diff:     value.Diff(want, got),
			Trace:    h.result.Received(a.Listener),
		}
	}
	return nil
}

// assertFinalState compares the data stored at a path.
func assertFinalState(db *firemock.Database, a Assertion) error {
	got, err := value.From(db.Get(a.Path))
	if err != nil {
		return err
	}
	if a.Absent {
		if got != nil {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("nothing at %q", a.Path),
				Actual:   value.CanonicalString(got),
			}
		}
		return nil
	}
	want, err := value.From(a.Expect)
	if err != nil {
		return fmt.Errorf("final_state expect: %w", err)
	}
	if !value.Equal(want, got) {
		wantText, gotText := value.CanonicalString(want), value.CanonicalString(got)
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s at %q", wantText, a.Path),
			Actual:   gotText,
			Diff:     textDiff(wantText, gotText),
		}
	}
	return nil
}

// assertQueryOrder reads a query and checks its iteration order.
func assertQueryOrder(db *firemock.Database, a Assertion) error {
	q, err := buildQuery(db.Ref(a.Path).Query, a.Query)
	if err != nil {
		return err
	}
	snap, err := q.Once(firemock.Value)
	if err != nil {
		return err
	}
	keys := snap.Keys()
	if !slices.Equal(keys, a.Keys) {
		return &AssertionError{
			Type:     AssertQueryOrder,
			Expected: fmt.Sprintf("%s returns %v", q, a.Keys),
			Actual:   fmt.Sprintf("%v", keys),
		}
	}
	return nil
}

// textDiff renders a character diff of two renderings, marking removed text
// with [-...-] and inserted text with {+...+}.
func textDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))

	var buf strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&buf, "[-%s-]", d.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&buf, "{+%s+}", d.Text)
		default:
			buf.WriteString(d.Text)
		}
	}
	return buf.String()
}
