package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/croplog/croplog/internal/queue"
	"github.com/croplog/croplog/internal/record"
	"github.com/croplog/croplog/internal/syncengine"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failure (service rejected a call, record missing, etc.)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string `json:"status"`         // "ok" or "error"
	Data   any    `json:"data,omitempty"` // success payload
}

// JSON emits data in the standard JSON envelope. Returns true when the
// formatter handled the output (callers render text themselves otherwise).
func (f *OutputFormatter) JSON(data any) (bool, error) {
	if f.Format != "json" {
		return false, nil
	}
	return true, json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
}

// renderStatus writes the human-readable status surface.
func renderStatus(w io.Writer, snap syncengine.Snapshot, pending []queue.Operation) {
	fmt.Fprintf(w, "online:  %s\n", yesNo(snap.Online))
	fmt.Fprintf(w, "pending: %d\n", snap.PendingCount)
	fmt.Fprintf(w, "syncing: %s\n", yesNo(snap.SyncInProgress))

	if len(pending) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "pending operations:")
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  KIND\tID\tATTEMPTS\tENQUEUED")
	for _, op := range pending {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n",
			op.Kind, op.ID, op.Attempts, op.EnqueuedAt.UTC().Format(time.RFC3339))
	}
	tw.Flush()
}

// renderRecords writes records as an aligned table.
func renderRecords(w io.Writer, recs []record.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "no records")
		return
	}
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCROP\tQUANTITY\tUNIT\tNOTES")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\n", r.ID, r.CropName, r.Quantity, r.Unit, r.Notes)
	}
	tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
