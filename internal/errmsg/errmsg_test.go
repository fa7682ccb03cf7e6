package errmsg

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type fakeSuggestingError struct {
	msg        string
	suggestion string
}

func (e *fakeSuggestingError) Error() string      { return e.msg }
func (e *fakeSuggestingError) Suggestion() string { return e.suggestion }

func TestFormat_AppendsSuggestion(t *testing.T) {
	err := &fakeSuggestingError{msg: "boom", suggestion: "try again"}
	got := Format(err)
	if !strings.Contains(got, "boom") || !strings.Contains(got, "try again") {
		t.Errorf("Format() = %q, want it to contain both the message and the suggestion", got)
	}
}

func TestFormat_EmptySuggestionOmitsBlankSection(t *testing.T) {
	err := &fakeSuggestingError{msg: "boom", suggestion: ""}
	got := Format(err)
	if got != "boom" {
		t.Errorf("Format() = %q, want exactly the message with no suggestion", got)
	}
}

func TestFormat_WrappedSuggestingError(t *testing.T) {
	inner := &fakeSuggestingError{msg: "boom", suggestion: "try again"}
	wrapped := errors.Join(errors.New("context"), inner)
	got := Format(wrapped)
	if !strings.Contains(got, "try again") {
		t.Errorf("Format() = %q, want the wrapped error's suggestion surfaced", got)
	}
}

func TestFprint_PrefixesError(t *testing.T) {
	var buf bytes.Buffer
	Fprint(&buf, &fakeSuggestingError{msg: "boom"})
	if !strings.HasPrefix(buf.String(), "Error: boom") {
		t.Errorf("Fprint output = %q, want an \"Error: \" prefix", buf.String())
	}
}
