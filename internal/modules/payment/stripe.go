package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeProvider opens hosted Checkout sessions and verifies the signed
// webhook events Stripe sends back.
type StripeProvider struct {
	webhookSecret string
	log           *zap.Logger
}

func NewStripeProvider(secretKey, webhookSecret string, log *zap.Logger) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{webhookSecret: webhookSecret, log: log}
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) CreateSession(ctx context.Context, sp SessionParams) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(sp.Reference),
		SuccessURL:        stripe.String(sp.SuccessURL),
		CancelURL:         stripe.String(sp.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(sp.Currency)),
					UnitAmount: stripe.Int64(minorUnits(sp.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(sp.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("reference", sp.Reference)
	params.AddMetadata("merchant", sp.Merchant)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (p *StripeProvider) VerifyCallback(payload []byte, signature string) (*CompletionEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("webhook signature: %w", err)
	}

	occurred := time.Unix(event.Created, 0)
	switch string(event.Type) {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		sess, err := decodeSession(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		if string(event.Type) == "checkout.session.completed" &&
			sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			// Delayed payment methods settle later; the async event decides.
			return p.ignored(sess, payload, occurred), nil
		}
		return &CompletionEvent{
			Reference:     sess.ClientReferenceID,
			CheckoutRef:   sess.ID,
			TransactionID: paymentIntentID(sess),
			Status:        CompletionSucceeded,
			RawBody:       string(payload),
			OccurredAt:    occurred,
		}, nil
	case "checkout.session.async_payment_failed":
		sess, err := decodeSession(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		return &CompletionEvent{
			Reference:     sess.ClientReferenceID,
			CheckoutRef:   sess.ID,
			TransactionID: paymentIntentID(sess),
			Status:        CompletionFailed,
			Reason:        "async payment failed",
			RawBody:       string(payload),
			OccurredAt:    occurred,
		}, nil
	case "checkout.session.expired":
		sess, err := decodeSession(event.Data.Raw)
		if err != nil {
			return nil, err
		}
		return &CompletionEvent{
			Reference:   sess.ClientReferenceID,
			CheckoutRef: sess.ID,
			Status:      CompletionSessionExpired,
			RawBody:     string(payload),
			OccurredAt:  occurred,
		}, nil
	default:
		p.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return &CompletionEvent{Status: CompletionIgnored, RawBody: string(payload), OccurredAt: occurred}, nil
	}
}

func (p *StripeProvider) ResolveSession(ctx context.Context, sessionID string) (*CompletionEvent, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	ev := &CompletionEvent{
		Reference:   sess.ClientReferenceID,
		CheckoutRef: sess.ID,
		OccurredAt:  time.Now(),
	}
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		ev.Status = CompletionSucceeded
		ev.TransactionID = paymentIntentID(sess)
	case sess.Status == stripe.CheckoutSessionStatusExpired:
		ev.Status = CompletionSessionExpired
	default:
		// Session still open; the webhook settles it.
		ev.Status = CompletionIgnored
	}
	return ev, nil
}

func (p *StripeProvider) ignored(sess *stripe.CheckoutSession, payload []byte, at time.Time) *CompletionEvent {
	return &CompletionEvent{
		Reference:   sess.ClientReferenceID,
		CheckoutRef: sess.ID,
		Status:      CompletionIgnored,
		RawBody:     string(payload),
		OccurredAt:  at,
	}
}

func decodeSession(raw json.RawMessage) (*stripe.CheckoutSession, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &sess, nil
}

func paymentIntentID(sess *stripe.CheckoutSession) string {
	if sess.PaymentIntent == nil {
		return ""
	}
	return sess.PaymentIntent.ID
}

// minorUnits converts a major-unit amount to the integer minor units Stripe
// bills in. Rounding happens here and nowhere else.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
