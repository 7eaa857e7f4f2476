package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/joinkit/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query rejected or failed while running
	ExitCommandError = 2 // Command error (missing catalog, unreadable query, database not found)
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
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Error codes shared by all commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeCatalog      = "E002" // Catalog could not be loaded
	ErrCodeQuery        = "E003" // Query file could not be loaded
	ErrCodeDatabase     = "E004" // Database could not be opened or bound
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeArity        = "E101" // ARITY_MISMATCH
	ErrCodeUnresolved   = "E102" // UNRESOLVED_TABLE_REFERENCE
	ErrCodeIncompatible = "E103" // INCOMPATIBLE_COMPARISON
	ErrCodeMalformed    = "E104" // MALFORMED_STAGE
	ErrCodeInvalidArg   = "E105" // INVALID_ARGUMENT
	ErrCodeSourceRead   = "E201" // SOURCE_READ_FAILURE
)

var joinErrorCodes = map[ir.ErrorCode]string{
	ir.ErrCodeArityMismatch:            ErrCodeArity,
	ir.ErrCodeUnresolvedTableReference: ErrCodeUnresolved,
	ir.ErrCodeIncompatibleComparison:   ErrCodeIncompatible,
	ir.ErrCodeMalformedStage:           ErrCodeMalformed,
	ir.ErrCodeInvalidArgument:          ErrCodeInvalidArg,
	ir.ErrCodeSourceReadFailure:        ErrCodeSourceRead,
}

// CodeFor maps a join error to its CLI error code. Errors that are not
// join errors get fallback.
func CodeFor(err error, fallback string) string {
	if code, ok := joinErrorCodes[ir.CodeOf(err)]; ok {
		return code
	}
	return fallback
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E102", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// IsJSON reports whether output is JSON.
func (f *OutputFormatter) IsJSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{Status: "ok", Data: data})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.IsJSON() {
		return f.writeJSON(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// writeJSON prints resp as one line of canonical JSON: sorted keys, no HTML
// escaping and numbers exactly as their MarshalJSON produced them.
func (f *OutputFormatter) writeJSON(resp CLIResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	out, err := ir.MarshalCanonical(tree)
	if err != nil {
		return fmt.Errorf("canonicalize response: %w", err)
	}
	_, err = f.Writer.Write(append(out, '\n'))
	return err
}

// Fail reports err under code and returns the ExitError the command should
// return.
func (f *OutputFormatter) Fail(exitCode int, code string, err error) error {
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(exitCode, code, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
