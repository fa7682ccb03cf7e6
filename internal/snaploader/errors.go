package snaploader

import (
	"errors"
	"fmt"
)

// ErrorType classifies snapshot-loader errors for Suggestion().
type ErrorType int

const (
	ErrTypeNetwork ErrorType = iota
	ErrTypeParsing
	ErrTypeNotFound
	ErrTypeFilesystem
)

// ErrSnapshotNotFound is the sentinel a LoaderError wraps when a snapshot
// download 404s. It is never retried.
var ErrSnapshotNotFound = errors.New("snaploader: snapshot not found")

// LoaderError is the structured error type for every snaploader operation.
type LoaderError struct {
	Type     ErrorType
	Snapshot string
	Message  string
	Err      error
}

func (e *LoaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snaploader: %s: %s: %v", e.Snapshot, e.Message, e.Err)
	}
	return fmt.Sprintf("snaploader: %s: %s", e.Snapshot, e.Message)
}

func (e *LoaderError) Unwrap() error { return e.Err }

// Suggestion returns an actionable hint for the error, or "" if none applies.
func (e *LoaderError) Suggestion() string {
	switch e.Type {
	case ErrTypeNotFound:
		return fmt.Sprintf("Run 'stackplan snapshots' to see the available snapshot directory for %q", e.Snapshot)
	case ErrTypeNetwork:
		return "Check your internet connection and try again"
	case ErrTypeParsing:
		return "The snapshot document is malformed; report this upstream"
	default:
		return ""
	}
}

// InvalidCompilerError is raised when a custom snapshot's compiler field
// does not parse.
type InvalidCompilerError struct {
	Text string
	Err  error
}

func (e *InvalidCompilerError) Error() string {
	return fmt.Sprintf("snaploader: invalid compiler version %q: %v", e.Text, e.Err)
}

func (e *InvalidCompilerError) Unwrap() error { return e.Err }

// Suggestion returns an actionable hint for an invalid compiler field.
func (e *InvalidCompilerError) Suggestion() string {
	return "fix the compiler field in the custom snapshot document; it must look like \"ghc-9.4.8\""
}
