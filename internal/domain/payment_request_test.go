package domain

import (
	"testing"
	"time"
)

func TestPaymentRequestStatusTerminal(t *testing.T) {
	for status, terminal := range map[PaymentRequestStatus]bool{
		PaymentRequestPending:   false,
		PaymentRequestSent:      false,
		PaymentRequestPaid:      true,
		PaymentRequestCancelled: true,
		PaymentRequestExpired:   true,
	} {
		if got := status.Terminal(); got != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, terminal)
		}
	}
}

func TestNoTransitionOutOfTerminalStates(t *testing.T) {
	terminals := []PaymentRequestStatus{PaymentRequestPaid, PaymentRequestCancelled, PaymentRequestExpired}
	all := []PaymentRequestStatus{
		PaymentRequestPending, PaymentRequestSent,
		PaymentRequestPaid, PaymentRequestCancelled, PaymentRequestExpired,
	}
	for _, from := range terminals {
		for _, to := range all {
			if from.CanTransitionTo(to) {
				t.Errorf("%s -> %s must not be allowed", from, to)
			}
		}
	}
}

func TestLifecycleTransitions(t *testing.T) {
	cases := []struct {
		from, to PaymentRequestStatus
		ok       bool
	}{
		{PaymentRequestPending, PaymentRequestSent, true},
		{PaymentRequestPending, PaymentRequestPaid, true},
		{PaymentRequestPending, PaymentRequestCancelled, true},
		{PaymentRequestPending, PaymentRequestExpired, true},
		{PaymentRequestSent, PaymentRequestPaid, true},
		{PaymentRequestSent, PaymentRequestCancelled, true},
		{PaymentRequestSent, PaymentRequestExpired, true},
		{PaymentRequestSent, PaymentRequestPending, false},
		{PaymentRequestSent, PaymentRequestSent, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestExpiredBy(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	pr := &PaymentRequest{Status: PaymentRequestSent, ExpiresAt: &past}
	if !pr.ExpiredBy(now) {
		t.Error("sent request past its expiry must report expired")
	}

	pr = &PaymentRequest{Status: PaymentRequestSent, ExpiresAt: &future}
	if pr.ExpiredBy(now) {
		t.Error("sent request before its expiry must not report expired")
	}

	pr = &PaymentRequest{Status: PaymentRequestPaid, ExpiresAt: &past}
	if pr.ExpiredBy(now) {
		t.Error("terminal request must never re-expire")
	}

	pr = &PaymentRequest{Status: PaymentRequestSent}
	if pr.ExpiredBy(now) {
		t.Error("request without an expiry clock must not expire")
	}
}
