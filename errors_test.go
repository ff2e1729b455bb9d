package paygate

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPaymentError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPaymentError(ErrCodeNetworkError, "facilitator unreachable", cause)

	if !strings.Contains(err.Error(), "NETWORK_ERROR") {
		t.Errorf("Error() = %q, missing code", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Unwrap chain broken")
	}
	if CodeOf(err) != ErrCodeNetworkError {
		t.Errorf("CodeOf = %s", CodeOf(err))
	}
}

func TestPaymentErrorDetails(t *testing.T) {
	err := NewPaymentError(ErrCodeBudgetExceeded, "over budget", nil).
		WithDetails("spent", "900").
		WithDetails("limit", "1000")

	if err.Details["spent"] != "900" || err.Details["limit"] != "1000" {
		t.Errorf("details = %v", err.Details)
	}
}

func TestCodeOfWrapped(t *testing.T) {
	inner := NewPaymentError(ErrCodeReceiptExpired, "receipt has expired", ErrReceiptExpired)
	wrapped := fmt.Errorf("fetch failed: %w", inner)

	if CodeOf(wrapped) != ErrCodeReceiptExpired {
		t.Errorf("CodeOf through wrapping = %s", CodeOf(wrapped))
	}
	if !errors.Is(wrapped, ErrReceiptExpired) {
		t.Error("sentinel lost through wrapping")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf of plain error should be empty")
	}
}
