package herrors

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDiagnosticWithToken(t *testing.T) {
	d := &ParseDiagnostic{Line: 3, Token: "+", Message: "unexpected token"}
	want := "[line 3] Error at '+': unexpected token"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseDiagnosticWithoutToken(t *testing.T) {
	d := &ParseDiagnostic{Line: 5, Message: "unterminated string"}
	want := "[line 5] Error: unterminated string"
	if got := d.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRuntimeFormat(t *testing.T) {
	got := Runtime(errors.New("division by zero"))
	want := "Runtime error: division by zero"
	if got != want {
		t.Errorf("Runtime() = %q, want %q", got, want)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
}

func TestWrapAddsContext(t *testing.T) {
	err := Wrap(errors.New("boom"), "reading file")
	if err == nil || !strings.Contains(err.Error(), "reading file") {
		t.Errorf("Wrap error = %v, want it to mention 'reading file'", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Wrap error = %v, want it to mention the original 'boom'", err)
	}
}

func TestStackOnPlainErrorIsEmpty(t *testing.T) {
	if got := Stack(errors.New("plain")); got != "" {
		t.Errorf("Stack() on a non-traced error = %q, want empty", got)
	}
}

func TestStackOnWrappedErrorIsNonEmpty(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), "context")
	if got := Stack(wrapped); got == "" {
		t.Error("Stack() on a pkg/errors-wrapped error should be non-empty")
	}
}
