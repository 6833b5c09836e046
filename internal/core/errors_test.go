package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := &Error{Code: "NO_DATA", Message: "no data available"}
	want := "[NO_DATA] no data available"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_FormatWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := WrapError(ErrProviderFailed, cause)

	want := "[PROVIDER_FAILED] data provider failed: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestError_Is(t *testing.T) {
	wrapped := WrapError(ErrNoData, fmt.Errorf("AAPL"))
	if !errors.Is(wrapped, ErrNoData) {
		t.Error("wrapped error should match its base code")
	}
	if errors.Is(wrapped, ErrParseFailed) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := WrapError(ErrStorageFailed, cause)
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}
