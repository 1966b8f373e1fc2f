package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_PushLog(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_PushLog -update
	result, err := RunWithGolden(t, loadTestdata(t, "push_log"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalTrace_OmitsMissingPrior(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{Seq: 1, Listener: "l", Type: "value", Key: "k", Value: "v"})
	result.State = map[string]any{"k": "v"}

	data, err := MarshalTrace("s", result)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "prior")
	assert.Contains(t, string(data), `"scenario_name": "s"`)
}
