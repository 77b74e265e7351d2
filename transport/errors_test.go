package transport

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	wrapped := errors.New("boom")
	err := newError("read", wrapped)

	if !strings.Contains(err.Error(), "read") {
		t.Errorf("Error() should contain the op, got: %s", err.Error())
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() should contain the wrapped error, got: %s", err.Error())
	}
	if !errors.Is(err, wrapped) {
		t.Errorf("Unwrap() should expose the wrapped error")
	}
}

func TestErrorFormattingWithoutWrappedError(t *testing.T) {
	err := &Error{Op: "timeout"}
	if err.Error() != "transport: timeout" {
		t.Errorf("Error() = %q, want %q", err.Error(), "transport: timeout")
	}
}
