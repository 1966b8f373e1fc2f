package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDiff(t *testing.T) {
	assert.Equal(t, `{"a":[-1-]{+2+}}`, textDiff(`{"a":1}`, `{"a":2}`))
	assert.Equal(t, "same", textDiff("same", "same"))
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertEventCount,
		Expected: "2 events for w",
		Actual:   "1 events",
		Trace:    []TraceEvent{{Seq: 4, Listener: "w", Type: "value", Key: "a"}},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: event_count")
	assert.Contains(t, msg, "Expected: 2 events for w")
	assert.Contains(t, msg, `[4] w value key="a"`)
	assert.NotContains(t, msg, "Diff")
}

func TestResult_Received(t *testing.T) {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Listener: "a"},
		{Seq: 2, Listener: "b"},
		{Seq: 3, Listener: "a"},
	}
	got := r.Received("a")
	assert.Len(t, got, 2)
	assert.Equal(t, int64(3), got[1].Seq)

	r.AddError("boom")
	assert.False(t, r.Pass)
}
