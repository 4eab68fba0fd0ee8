package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/uniclaim/claimsync/internal/claims"
	"github.com/uniclaim/claimsync/internal/store"
	"github.com/uniclaim/claimsync/internal/turnover"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation refused or scenarios failed
	ExitCommandError = 2 // Bad arguments, unreadable config, database unavailable
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// ErrorCode returns the short machine-readable code for a service error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, claims.ErrPostNotFound), errors.Is(err, turnover.ErrPostNotFound):
		return "post_not_found"
	case errors.Is(err, claims.ErrClaimNotFound):
		return "claim_not_found"
	case errors.Is(err, claims.ErrConversationNotFound):
		return "conversation_not_found"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, claims.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, claims.ErrInvalidClaim):
		return "invalid_claim"
	case errors.Is(err, turnover.ErrWrongPostType):
		return "wrong_post_type"
	case errors.Is(err, turnover.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, turnover.ErrInvalidDestination):
		return "invalid_destination"
	}
	return "internal"
}

// OutputFormatter writes command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; keeps JSON on Writer parseable
	Verbose   bool
}

// CLIResponse is the JSON envelope of every command's output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data. In text mode the lines are printed instead; with no
// lines, data itself is printed.
func (f *OutputFormatter) Success(data any, lines ...string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if len(lines) == 0 {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(f.Writer, line); err != nil {
			return err
		}
	}
	return nil
}

// Fail returns err as an ExitError with ExitFailure. In JSON mode the error
// envelope is also written to Writer; in text mode the caller prints the
// returned error.
func (f *OutputFormatter) Fail(message string, err error) error {
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: ErrorCode(err), Message: fmt.Sprintf("%s: %v", message, err)},
		})
	}
	return WrapExitError(ExitFailure, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
