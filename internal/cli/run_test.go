package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: greeting
description: "A set raises one value event"
listeners:
  - name: watcher
    path: greeting
    event: value
steps:
  - op: set
    path: greeting
    value: "hello"
assertions:
  - type: event_count
    listener: watcher
    count: 1
  - type: final_state
    path: greeting
    expect: "hello"
`

const failingScenario = `name: miscounted
description: "Expects more events than a single set raises"
listeners:
  - name: watcher
    path: greeting
    event: value
steps:
  - op: set
    path: greeting
    value: "hello"
assertions:
  - type: event_count
    listener: watcher
    count: 3
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func executeRun(t *testing.T, rootOpts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunPassingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "greeting.yaml", passingScenario)

	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ greeting")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestRunFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "greeting.yaml", passingScenario)
	writeScenario(t, dir, "miscounted.yaml", failingScenario)

	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ miscounted")
	assert.Contains(t, out, "event_count")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestRunInvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nsteps: []\n")

	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "load error")
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "greeting.yaml", passingScenario)
	writeScenario(t, dir, "miscounted.yaml", failingScenario)

	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, "--filter", "greet*", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "miscounted")
}

func TestRunNonExistentPath(t *testing.T) {
	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "failed to find scenarios")
}

func TestRunEmptyDirectory(t *testing.T) {
	_, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestRunGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	file := writeScenario(t, dir, "greeting.yaml", passingScenario)
	opts := &RootOptions{Format: "text", NoColor: true}

	out, err := executeRun(t, opts, "--update", file)
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	golden := filepath.Join(dir, "golden", "greeting.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "greeting"`)

	out, err = executeRun(t, opts, file)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ greeting (golden)")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0644))
	out, err = executeRun(t, opts, file)
	require.Error(t, err)
	assert.Contains(t, out, "golden file mismatch")
}

func TestRunTrace(t *testing.T) {
	dir := t.TempDir()
	file := writeScenario(t, dir, "greeting.yaml", passingScenario)

	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true}, "--trace", file)
	require.NoError(t, err)
	assert.Contains(t, out, "[1] watcher")
	assert.Contains(t, out, "value")
}

func TestRunJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "greeting.yaml", passingScenario)
	writeScenario(t, dir, "miscounted.yaml", failingScenario)

	out, err := executeRun(t, &RootOptions{Format: "json"}, dir)
	require.Error(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)

	byName := map[string]ScenarioResult{}
	for _, sr := range resp.Data.Scenarios {
		byName[sr.Name] = sr
	}
	assert.True(t, byName["greeting"].Pass)
	assert.False(t, byName["miscounted"].Pass)
	assert.NotEmpty(t, byName["miscounted"].Errors)
}

func TestRunConfigFileAppliesUnderScenario(t *testing.T) {
	dir := t.TempDir()
	file := writeScenario(t, dir, "greeting.yaml", passingScenario)
	cfg := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("send_events: false\n"), 0644))

	// With events gated off the watcher never fires.
	out, err := executeRun(t, &RootOptions{Format: "text", NoColor: true, Config: cfg}, file)
	require.Error(t, err)
	assert.Contains(t, out, "✗ greeting")
}

func TestRunBadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := writeScenario(t, dir, "greeting.yaml", passingScenario)
	cfg := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: loud\n"), 0644))

	_, err := executeRun(t, &RootOptions{Format: "text", NoColor: true, Config: cfg}, file)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeInvalid)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("scenarios", "golden", "push_log.golden"),
		goldenFilePath(filepath.Join("scenarios", "push_log.yaml")))
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", passingScenario)
	writeScenario(t, dir, "b.yml", passingScenario)
	writeScenario(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	writeScenario(t, filepath.Join(dir, "nested"), "c.yaml", passingScenario)

	files, err := findScenarioFiles([]string{dir}, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles([]string{dir}, "[ab]")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles([]string{dir}, "[")
	require.Error(t, err)
}
