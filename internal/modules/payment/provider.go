package payment

import (
	"context"
	"time"
)

// SessionParams describes a checkout session to open with the provider.
// Amount stays in major units here; providers that bill in minor units
// convert at their own boundary.
type SessionParams struct {
	Amount      float64
	Currency    string
	Reference   string
	Description string
	Merchant    string
	SuccessURL  string
	CancelURL   string
}

// Session is the provider-side handle for an opened checkout.
type Session struct {
	ID  string
	URL string
}

type CompletionStatus string

const (
	CompletionSucceeded      CompletionStatus = "succeeded"
	CompletionFailed         CompletionStatus = "failed"
	CompletionSessionExpired CompletionStatus = "session_expired"
	// CompletionIgnored marks provider events that carry no state change
	// for us (unknown event types, sessions still settling).
	CompletionIgnored CompletionStatus = "ignored"
)

// CompletionEvent is the provider-neutral outcome of a checkout session.
// Webhook callbacks, return-URL polling and the simulated provider all
// reduce to this shape before touching the payment request.
type CompletionEvent struct {
	Reference     string
	CheckoutRef   string
	TransactionID string
	Status        CompletionStatus
	Reason        string
	RawBody       string
	OccurredAt    time.Time
}

// Provider abstracts the hosted-checkout service. VerifyCallback must reject
// payloads whose signature does not check out; everything downstream trusts
// the returned event.
type Provider interface {
	Name() string
	CreateSession(ctx context.Context, p SessionParams) (*Session, error)
	VerifyCallback(payload []byte, signature string) (*CompletionEvent, error)
	ResolveSession(ctx context.Context, sessionID string) (*CompletionEvent, error)
}
