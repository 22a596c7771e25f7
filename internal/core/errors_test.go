// internal/core/errors_test.go
package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "TEST_ERROR", Message: "test message"}
	if err.Error() != "[TEST_ERROR] test message" {
		t.Errorf("unexpected error string: %s", err.Error())
	}
}

func TestError_ErrorWithCause(t *testing.T) {
	err := WrapError(ErrTransport, errors.New("connection reset"))
	want := "[TRANSPORT] upstream request failed: connection reset"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Code: "WRAP", Message: "wrapped", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should return cause")
	}
}

func TestError_Is(t *testing.T) {
	if !errors.Is(ErrSymbolNotFound, ErrSymbolNotFound) {
		t.Error("same error should match")
	}
	if errors.Is(ErrSymbolNotFound, ErrNoData) {
		t.Error("different codes should not match")
	}
}

func TestError_IsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("fetching stock quotes: %w", WrapError(ErrConfigMissing, errors.New("TWELVE_DATA_API_KEY not configured")))
	if !errors.Is(err, ErrConfigMissing) {
		t.Error("expected code match through fmt wrapping")
	}
	if errors.Is(err, ErrTransport) {
		t.Error("config error must not look like a transport error")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original")
	wrapped := WrapError(ErrProviderError, cause)
	if wrapped.Cause != cause {
		t.Error("cause not set")
	}
	if wrapped.Code != ErrProviderError.Code {
		t.Error("code not preserved")
	}
}
