package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewUpstream_KeepsClientStatus(t *testing.T) {
	err := NewUpstream(http.StatusBadRequest, "Can only move shoot days", nil)
	if err.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.Code)
	}
	if err.Message != "Can only move shoot days" {
		t.Errorf("expected backend message preserved, got %q", err.Message)
	}
}

func TestNewUpstream_ServerErrorsBecomeBadGateway(t *testing.T) {
	for _, status := range []int{0, 500, 503} {
		err := NewUpstream(status, "", errors.New("boom"))
		if err.Code != http.StatusBadGateway {
			t.Errorf("status %d: expected 502, got %d", status, err.Code)
		}
		if err.Message == "" {
			t.Errorf("status %d: expected default message", status)
		}
	}
}

func TestSafeMessage_Wrapped(t *testing.T) {
	inner := NewNotFound("day not found")
	wrapped := fmt.Errorf("loading day: %w", inner)

	if got := SafeMessage(wrapped); got != "day not found" {
		t.Errorf("expected wrapped message, got %q", got)
	}
	if got := SafeCode(wrapped); got != http.StatusNotFound {
		t.Errorf("expected 404, got %d", got)
	}
}

func TestSafeMessage_HidesRawErrors(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.3:6379: connection refused")
	if got := SafeMessage(err); got == err.Error() {
		t.Error("raw error leaked to client message")
	}
	if got := SafeCode(err); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}
