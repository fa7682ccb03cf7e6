// Package errmsg renders an error plus its actionable suggestion for
// terminal output, dispatching on this module's own structured error types
// instead of string-matching heuristics: every error type this module
// raises already carries a Suggestion() method, so formatting is a direct
// errors.As walk rather than pattern matching on error text.
package errmsg

import (
	"errors"
	"fmt"
	"io"
)

// suggester is implemented by every structured error type this module
// raises (snapindex.IndexError, snaploader.LoaderError,
// snaploader.InvalidCompilerError, resolve.PlanError).
type suggester interface {
	error
	Suggestion() string
}

// Format renders err's message, followed by its Suggestion() text when the
// error (or one it wraps) implements suggester.
func Format(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	var s suggester
	if errors.As(err, &s) {
		if suggestion := s.Suggestion(); suggestion != "" {
			return fmt.Sprintf("%s\n\n%s", msg, suggestion)
		}
	}

	return msg
}

// Fprint writes Format(err) to w, prefixed with "Error: " and followed by a
// trailing newline.
func Fprint(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", Format(err))
}
