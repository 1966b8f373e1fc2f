package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forest-fire/firemock-sub000/internal/harness"
)

// FileValidation is the outcome for one scenario file.
type FileValidation struct {
	File  string `json:"file"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "validate <scenario-file-or-dir>...",
		Short: "Validate scenario files without running them",
		Long: `Parse scenario files and check their structure: required fields,
known operations, event types, query shapes and listener references.

Nothing is executed. Faster than run for editing feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runValidate(opts *RootOptions, paths []string, filter string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
		NoColor:   opts.NoColor,
	}

	files, err := findScenarioFiles(paths, filter)
	if err != nil {
		return formatter.CommandError(ErrCodeNotFound, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		return formatter.CommandError(ErrCodeNoFiles, "no scenario files found", nil)
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	invalid := 0
	for _, file := range files {
		fv := FileValidation{File: file}
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			fv.Error = err.Error()
			result.Valid = false
			invalid++
		} else {
			fv.Name = scenario.Name
		}
		result.Files = append(result.Files, fv)
	}

	if opts.Format == "json" {
		status := "ok"
		if !result.Valid {
			status = "error"
		}
		if err := formatter.JSON(status, result); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Error != "" {
				formatter.Fail(fv.File, fmt.Sprintf("%s: %s", ErrCodeInvalid, fv.Error))
				continue
			}
			formatter.Pass(fv.File, fv.Name)
		}
		if result.Valid {
			fmt.Fprintln(formatter.Writer, "All scenarios valid")
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d of %d file(s)", invalid, len(files)))
	}
	return nil
}
