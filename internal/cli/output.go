package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // A scenario failed or a file is invalid
	ExitCommandError = 2 // Command error (missing paths, bad config, etc.)
)

// Error codes reported in JSON output.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeNotFound  = "E002" // Path not found
	ErrCodeNoFiles   = "E003" // No scenario files found
	ErrCodeInvalid   = "E004" // Scenario failed to parse or validate
	ErrCodeFailed    = "E005" // Scenario assertions failed
	ErrCodeGoldenOut = "E006" // Golden file missing or different
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	NoColor   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON writes data as a response with the given status.
func (f *OutputFormatter) JSON(status string, data any) error {
	return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: status, Data: data})
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "%s [%s]: %s\n", f.paint(color.FgRed, "Error"), code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// CommandError reports a command-level failure in the configured format
// and returns it as an ExitCommandError.
func (f *OutputFormatter) CommandError(code, message string, err error) error {
	detail := message
	if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, detail, nil)
	return WrapExitError(ExitCommandError, code+": "+message, err)
}

// Pass prints a passing line: "✓ name".
func (f *OutputFormatter) Pass(name, note string) {
	line := fmt.Sprintf("%s %s", f.paint(color.FgGreen, "✓"), name)
	if note != "" {
		line += " (" + note + ")"
	}
	fmt.Fprintln(f.Writer, line)
}

// Fail prints a failing line followed by indented reasons.
func (f *OutputFormatter) Fail(name string, reasons ...string) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.paint(color.FgRed, "✗"), name)
	for _, r := range reasons {
		fmt.Fprintf(f.Writer, "  %s\n", r)
	}
}

// Summary prints the totals line, green when nothing failed.
func (f *OutputFormatter) Summary(passed, failed, total int) {
	attr := color.FgGreen
	if failed > 0 {
		attr = color.FgRed
	}
	fmt.Fprintf(f.Writer, "\n%s\n", f.paint(attr, fmt.Sprintf("%d passed, %d failed, %d total", passed, failed, total)))
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// paint colors s unless disabled. fatih/color also turns itself off when
// the output is not a terminal.
func (f *OutputFormatter) paint(attr color.Attribute, s string) string {
	if f.NoColor {
		return s
	}
	return color.New(attr).Sprint(s)
}
