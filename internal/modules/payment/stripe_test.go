package payment

import (
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte, at time.Time, secret string) string {
	t.Helper()
	sig := webhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func stripeEventPayload(eventType string, created time.Time, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","object":"event","api_version":%q,"created":%d,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, created.Unix(), eventType, object,
	))
}

func newStripeProvider() *StripeProvider {
	return NewStripeProvider("sk_test_x", testWebhookSecret, zap.NewNop())
}

func TestStripeVerifyCallbackRejectsBadSignature(t *testing.T) {
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("checkout.session.completed", now,
		`{"id":"cs_1","client_reference_id":"pr-ref-1","payment_status":"paid"}`)

	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), "00ff00ff")
	if _, err := prov.VerifyCallback(payload, header); err == nil {
		t.Fatal("tampered signature must be rejected")
	}

	// Signed, but with someone else's secret.
	header = signedHeader(t, payload, now, "whsec_other")
	if _, err := prov.VerifyCallback(payload, header); err == nil {
		t.Fatal("wrong-secret signature must be rejected")
	}
}

func TestStripeVerifyCallbackCompleted(t *testing.T) {
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("checkout.session.completed", now,
		`{"id":"cs_1","client_reference_id":"pr-ref-1","payment_status":"paid","payment_intent":"pi_123"}`)

	ev, err := prov.VerifyCallback(payload, signedHeader(t, payload, now, testWebhookSecret))
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ev.Status != CompletionSucceeded {
		t.Fatalf("status = %s, want succeeded", ev.Status)
	}
	if ev.Reference != "pr-ref-1" || ev.CheckoutRef != "cs_1" {
		t.Errorf("refs = %q / %q, want pr-ref-1 / cs_1", ev.Reference, ev.CheckoutRef)
	}
	if ev.TransactionID != "pi_123" {
		t.Errorf("transaction id = %q, want pi_123", ev.TransactionID)
	}
	if ev.RawBody == "" {
		t.Error("raw body must be carried for the audit trail")
	}
}

func TestStripeVerifyCallbackUnpaidCompletedIsIgnored(t *testing.T) {
	// Delayed payment methods emit completed with payment_status=unpaid; the
	// async_payment event settles the request later.
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("checkout.session.completed", now,
		`{"id":"cs_1","client_reference_id":"pr-ref-1","payment_status":"unpaid"}`)

	ev, err := prov.VerifyCallback(payload, signedHeader(t, payload, now, testWebhookSecret))
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ev.Status != CompletionIgnored {
		t.Fatalf("status = %s, want ignored", ev.Status)
	}
}

func TestStripeVerifyCallbackAsyncFailed(t *testing.T) {
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("checkout.session.async_payment_failed", now,
		`{"id":"cs_1","client_reference_id":"pr-ref-1","payment_intent":"pi_123"}`)

	ev, err := prov.VerifyCallback(payload, signedHeader(t, payload, now, testWebhookSecret))
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ev.Status != CompletionFailed || ev.Reason == "" {
		t.Fatalf("event = %+v, want failed with a reason", ev)
	}
}

func TestStripeVerifyCallbackSessionExpired(t *testing.T) {
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("checkout.session.expired", now,
		`{"id":"cs_1","client_reference_id":"pr-ref-1"}`)

	ev, err := prov.VerifyCallback(payload, signedHeader(t, payload, now, testWebhookSecret))
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ev.Status != CompletionSessionExpired {
		t.Fatalf("status = %s, want session_expired", ev.Status)
	}
	if ev.TransactionID != "" {
		t.Errorf("expired session must not carry a transaction id, got %q", ev.TransactionID)
	}
}

func TestStripeVerifyCallbackUnhandledType(t *testing.T) {
	prov := newStripeProvider()
	now := time.Now()
	payload := stripeEventPayload("invoice.paid", now, `{}`)

	ev, err := prov.VerifyCallback(payload, signedHeader(t, payload, now, testWebhookSecret))
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if ev.Status != CompletionIgnored {
		t.Fatalf("status = %s, want ignored", ev.Status)
	}
}

func TestMinorUnits(t *testing.T) {
	cases := map[float64]int64{
		10:    1000,
		10.5:  1050,
		4.67:  467,
		0.1:   10,
		99.99: 9999,
	}
	for amount, want := range cases {
		if got := minorUnits(amount); got != want {
			t.Errorf("minorUnits(%v) = %d, want %d", amount, got, want)
		}
	}
}
