package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forest-fire/firemock-sub000/internal/config"
	"github.com/forest-fire/firemock-sub000/internal/harness"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario name filter (glob pattern)
	Trace  bool   // print every delivery in text output
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string               `json:"name"`
	File   string               `json:"file"`
	Pass   bool                 `json:"pass"`
	Errors []string             `json:"errors,omitempty"`
	Trace  []harness.TraceEvent `json:"trace,omitempty"`
}

// RunResult holds the overall result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-file-or-dir>...",
		Short: "Run scenarios against a fresh emulated database",
		Long: `Run scenario files, check their assertions and compare their event
traces with golden files.

A scenario's golden file lives in a golden/ directory next to it, named
after the scenario file. Scenarios without one are checked by assertions
only.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, bad config, etc.)

Examples:
  firemock run ./scenarios
  firemock run ./scenarios --filter "people-*"
  firemock run ./scenarios/push_log.yaml --trace
  firemock run ./scenarios --update
  firemock run ./scenarios --config session.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print event traces")

	return cmd
}

func runScenarios(opts *RunOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		NoColor:   opts.NoColor,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return formatter.CommandError(ErrCodeInvalid, "failed to load config", err)
	}

	files, err := findScenarioFiles(paths, opts.Filter)
	if err != nil {
		return formatter.CommandError(ErrCodeNotFound, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		return formatter.CommandError(ErrCodeNoFiles, "no scenario files found", nil)
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(file, cfg, opts, formatter)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		status := "ok"
		if result.Failed > 0 {
			status = "error"
		}
		if err := formatter.JSON(status, result); err != nil {
			return err
		}
	} else {
		formatter.Summary(result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

// runScenario loads, runs and reports one scenario file.
func runScenario(file string, cfg config.Config, opts *RunOptions, f *OutputFormatter) ScenarioResult {
	text := opts.Format != "json"
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	fail := func(reasons ...string) ScenarioResult {
		sr.Pass = false
		sr.Errors = append(sr.Errors, reasons...)
		if text {
			f.Fail(sr.Name, reasons...)
		}
		return sr
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(fmt.Sprintf("load error: %v", err))
	}
	sr.Name = scenario.Name
	scenario.Config = cfg.Merge(scenario.Config)

	logger := newLogger(f.GetErrWriter(), opts.RootOptions, scenario.Config)
	result, err := harness.Run(scenario, harness.WithLogger(logger))
	if err != nil {
		return fail(fmt.Sprintf("execution error: %v", err))
	}
	if opts.Trace {
		sr.Trace = result.Trace
		if text {
			printTrace(f, result.Trace)
		}
	}

	goldenPath := goldenFilePath(file)
	note := ""
	switch {
	case opts.Update:
		if err := writeGolden(goldenPath, scenario.Name, result); err != nil {
			return fail(fmt.Sprintf("golden update error: %v", err))
		}
		note = "golden updated"
	case fileExists(goldenPath):
		match, err := compareGolden(goldenPath, scenario.Name, result)
		if err != nil {
			return fail(fmt.Sprintf("golden comparison error: %v", err))
		}
		if !match {
			return fail("golden file mismatch (run with --update to regenerate)")
		}
		note = "golden"
	}

	if !result.Pass {
		return fail(result.Errors...)
	}
	sr.Pass = true
	if text {
		f.Pass(sr.Name, note)
	}
	return sr
}

func printTrace(f *OutputFormatter, trace []harness.TraceEvent) {
	for _, ev := range trace {
		fmt.Fprintf(f.Writer, "  [%d] %-14s %-13s %s\n", ev.Seq, ev.Listener, ev.Type, ev.Key)
	}
}

// findScenarioFiles expands files and directories into YAML scenario files.
func findScenarioFiles(paths []string, filter string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			ext := filepath.Ext(path)
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}
			if filter != "" {
				name := strings.TrimSuffix(filepath.Base(path), ext)
				matched, err := filepath.Match(filter, name)
				if err != nil {
					return fmt.Errorf("invalid filter pattern: %w", err)
				}
				if !matched {
					return nil
				}
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// writeGolden writes the current trace as the golden file.
func writeGolden(path, name string, result *harness.Result) error {
	data, err := harness.MarshalTrace(name, result)
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// compareGolden reports whether the golden file matches the current trace.
func compareGolden(path, name string, result *harness.Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	got, err := harness.MarshalTrace(name, result)
	if err != nil {
		return false, err
	}
	return bytes.Equal(want, got), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
