package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
)

// Config carries the checkout settings the service needs at runtime.
type Config struct {
	Currency     string
	MerchantName string
	BaseURL      string
	FrontendURL  string
}

// Service drives the payment request lifecycle. Every path that can settle
// a request funnels through HandleCompletion, and the single conditional
// write in MarkPaidIdempotent decides which delivery owns the side effects.
type Service struct {
	requests paymentRequestStore
	bookings bookingStore
	notifs   notifier
	provider Provider
	bus      publisher
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
}

func NewService(requests paymentRequestStore, bookings bookingStore, notifs notifier, provider Provider, bus publisher, cfg Config, log *zap.Logger) *Service {
	return &Service{
		requests: requests,
		bookings: bookings,
		notifs:   notifs,
		provider: provider,
		bus:      bus,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Get loads the payment page state for a reference. Overdue requests are
// expired on read, so the page a customer opens from a stale email already
// shows the expired screen.
func (s *Service) Get(ctx context.Context, reference string) (*RequestView, error) {
	pr, err := s.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	pr = s.withExpiry(ctx, pr)
	return newRequestView(pr), nil
}

// OpenCheckout pins the chosen amount on the request and opens a provider
// session for it. Returns the redirect the customer should follow.
func (s *Service) OpenCheckout(ctx context.Context, reference, paymentType string) (*CheckoutRedirect, error) {
	ptype, err := parsePaymentType(paymentType)
	if err != nil {
		return nil, err
	}
	pr, err := s.loadActive(ctx, reference)
	if err != nil {
		return nil, err
	}

	amount := amountFor(pr.FullAmount, ptype)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: request has no chargeable amount", ErrValidation)
	}
	changed, err := s.requests.UpdateAmount(ctx, pr.ID, amount, ptype)
	if err != nil {
		return nil, fmt.Errorf("update amount: %w", err)
	}
	if !changed {
		return nil, s.conflictFor(ctx, reference)
	}
	pr.Amount, pr.PaymentType = amount, ptype

	sess, err := s.provider.CreateSession(ctx, SessionParams{
		Amount:      amount,
		Currency:    pr.Currency,
		Reference:   pr.Reference,
		Description: s.describe(pr),
		Merchant:    s.cfg.MerchantName,
		SuccessURL:  s.returnURL(pr.Reference),
		CancelURL:   s.payURL(pr.Reference),
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.requests.SetCheckoutRef(ctx, pr.ID, sess.ID); err != nil {
		// The webhook still matches by reference, so checkout survives this.
		s.log.Error("store checkout ref", zap.String("reference", pr.Reference), zap.Error(err))
	}
	if err := s.requests.MarkSent(ctx, pr.ID, s.now()); err != nil {
		s.log.Warn("mark payment request sent", zap.String("reference", pr.Reference), zap.Error(err))
	} else {
		pr.Status = domain.PaymentRequestSent
		s.publishRequest(events.PaymentRequestSent, pr)
	}

	s.log.Info("checkout session opened",
		zap.String("reference", pr.Reference),
		zap.String("provider", s.provider.Name()),
		zap.String("payment_type", string(ptype)),
		zap.Float64("amount", amount))
	return &CheckoutRedirect{URL: sess.URL, CheckoutRef: sess.ID, Amount: amount, PaymentType: ptype}, nil
}

// Resend re-issues the payment email, optionally switching the requested
// amount first. Used by admins when the original mail bounced or the
// customer asked for the other option.
func (s *Service) Resend(ctx context.Context, reference, paymentType string) (*RequestView, error) {
	pr, err := s.loadActive(ctx, reference)
	if err != nil {
		return nil, err
	}

	if paymentType != "" {
		ptype, err := parsePaymentType(paymentType)
		if err != nil {
			return nil, err
		}
		amount := amountFor(pr.FullAmount, ptype)
		changed, err := s.requests.UpdateAmount(ctx, pr.ID, amount, ptype)
		if err != nil {
			return nil, fmt.Errorf("update amount: %w", err)
		}
		if !changed {
			return nil, s.conflictFor(ctx, reference)
		}
		pr.Amount, pr.PaymentType = amount, ptype
	}

	if pr.Booking == nil || pr.Customer == nil {
		return nil, fmt.Errorf("payment request %s is missing its booking or customer", reference)
	}
	if err := s.notifs.PaymentRequestIssued(ctx, pr, pr.Booking, pr.Customer, s.payURL(pr.Reference)); err != nil {
		// Not marked sent, so the dashboard keeps flagging it for another try.
		return nil, fmt.Errorf("send payment request: %w", err)
	}
	if err := s.requests.MarkSent(ctx, pr.ID, s.now()); err != nil {
		s.log.Warn("mark payment request sent", zap.String("reference", pr.Reference), zap.Error(err))
	} else {
		pr.Status = domain.PaymentRequestSent
	}
	s.publishRequest(events.PaymentRequestUpdated, pr)
	return newRequestView(pr), nil
}

// Cancel closes an active request. With notify=false the customer hears
// nothing, which is what a booking cancellation flow wants when it retires
// the attached request as a side effect.
func (s *Service) Cancel(ctx context.Context, reference string, notify bool) (*RequestView, error) {
	pr, err := s.loadActive(ctx, reference)
	if err != nil {
		return nil, err
	}
	changed, err := s.requests.MarkCancelled(ctx, pr.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel payment request: %w", err)
	}
	if !changed {
		return nil, s.conflictFor(ctx, reference)
	}
	pr.Status = domain.PaymentRequestCancelled

	if notify && pr.Booking != nil && pr.Customer != nil {
		if err := s.notifs.PaymentRequestCancelled(ctx, pr, pr.Booking, pr.Customer); err != nil {
			s.log.Error("cancellation notice", zap.String("reference", pr.Reference), zap.Error(err))
		}
	}
	s.publishRequest(events.PaymentRequestCancelled, pr)
	return newRequestView(pr), nil
}

// HandleCompletion applies a provider outcome to the matching request.
// Safe to call any number of times with the same event: replays find the
// request already terminal and return without side effects.
func (s *Service) HandleCompletion(ctx context.Context, ev CompletionEvent) error {
	if ev.Status == CompletionIgnored {
		return nil
	}
	pr, err := s.findForEvent(ctx, ev)
	if err != nil {
		return err
	}
	if pr.Status.Terminal() {
		s.log.Info("completion event on settled request",
			zap.String("reference", pr.Reference),
			zap.String("status", string(pr.Status)),
			zap.String("event", string(ev.Status)))
		return nil
	}

	switch ev.Status {
	case CompletionSucceeded:
		return s.settlePaid(ctx, pr, ev)
	case CompletionFailed:
		if err := s.requests.RecordFailure(ctx, pr.ID, ev.TransactionID, ev.Reason, ev.RawBody); err != nil {
			return fmt.Errorf("record payment failure: %w", err)
		}
		s.log.Warn("payment attempt failed",
			zap.String("reference", pr.Reference),
			zap.String("reason", ev.Reason))
		return nil
	case CompletionSessionExpired:
		// Only the checkout session lapsed. Clearing the ref lets the
		// customer open a fresh session from the same payment link.
		if err := s.requests.ClearCheckoutRef(ctx, pr.ID); err != nil {
			return fmt.Errorf("clear checkout ref: %w", err)
		}
		s.log.Info("checkout session expired", zap.String("reference", pr.Reference))
		return nil
	default:
		return fmt.Errorf("%w: completion status %q", ErrValidation, ev.Status)
	}
}

// ExpireDue sweeps every overdue request into the expired state. Run from
// the cleanup binary.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.requests.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire due payment requests: %w", err)
	}
	if n > 0 {
		s.log.Info("expired overdue payment requests", zap.Int64("count", n))
		s.bus.Publish(events.New(events.PaymentRequestExpired, map[string]any{"count": n}))
	}
	return n, nil
}

func (s *Service) settlePaid(ctx context.Context, pr *domain.PaymentRequest, ev CompletionEvent) error {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}
	changed, err := s.requests.MarkPaidIdempotent(ctx, pr.ID, ev.TransactionID, ev.RawBody, occurred)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !changed {
		// A concurrent delivery settled it first and owns the side effects.
		s.log.Info("duplicate payment callback ignored", zap.String("reference", pr.Reference))
		return nil
	}
	pr.Status = domain.PaymentRequestPaid
	pr.TransactionID = ev.TransactionID
	pr.PaidAt = &occurred

	if confirmed, err := s.bookings.Confirm(ctx, pr.BookingID); err != nil {
		s.log.Error("confirm booking after payment",
			zap.Int64("booking_id", pr.BookingID), zap.Error(err))
	} else if confirmed {
		if pr.Booking != nil {
			pr.Booking.Status = domain.BookingConfirmed
		}
		s.publishBooking(events.BookingConfirmed, pr)
	}

	if pr.Booking != nil && pr.Customer != nil {
		if err := s.notifs.PaymentReceived(ctx, pr, pr.Booking, pr.Customer); err != nil {
			s.log.Error("payment received notice", zap.String("reference", pr.Reference), zap.Error(err))
		}
	}
	s.publishRequest(events.PaymentReceived, pr)
	s.log.Info("payment settled",
		zap.String("reference", pr.Reference),
		zap.String("transaction_id", ev.TransactionID),
		zap.Float64("amount", pr.Amount))
	return nil
}

func (s *Service) load(ctx context.Context, reference string) (*domain.PaymentRequest, error) {
	pr, err := s.requests.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load payment request: %w", err)
	}
	return pr, nil
}

func (s *Service) loadActive(ctx context.Context, reference string) (*domain.PaymentRequest, error) {
	pr, err := s.load(ctx, reference)
	if err != nil {
		return nil, err
	}
	pr = s.withExpiry(ctx, pr)
	if pr.Status.Terminal() {
		return nil, &StateConflictError{Status: pr.Status}
	}
	return pr, nil
}

// withExpiry applies the on-read expiry check. The conditional MarkExpired
// keeps it race-safe: whoever loses reloads the winner's terminal state.
func (s *Service) withExpiry(ctx context.Context, pr *domain.PaymentRequest) *domain.PaymentRequest {
	if !pr.ExpiredBy(s.now()) {
		return pr
	}
	changed, err := s.requests.MarkExpired(ctx, pr.ID)
	if err != nil {
		s.log.Error("expire payment request", zap.String("reference", pr.Reference), zap.Error(err))
		return pr
	}
	if changed {
		pr.Status = domain.PaymentRequestExpired
		s.publishRequest(events.PaymentRequestExpired, pr)
		return pr
	}
	if fresh, err := s.requests.GetByReference(ctx, pr.Reference); err == nil {
		return fresh
	}
	return pr
}

func (s *Service) findForEvent(ctx context.Context, ev CompletionEvent) (*domain.PaymentRequest, error) {
	if ev.Reference != "" {
		pr, err := s.requests.GetByReference(ctx, ev.Reference)
		if err == nil {
			return pr, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find payment request: %w", err)
		}
	}
	if ev.CheckoutRef != "" {
		pr, err := s.requests.GetByCheckoutRef(ctx, ev.CheckoutRef)
		if err == nil {
			return pr, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find payment request: %w", err)
		}
	}
	return nil, ErrNotFound
}

func (s *Service) conflictFor(ctx context.Context, reference string) error {
	conflict := &StateConflictError{Status: domain.PaymentRequestCancelled}
	if pr, err := s.requests.GetByReference(ctx, reference); err == nil {
		conflict.Status = pr.Status
	}
	return conflict
}

func (s *Service) describe(pr *domain.PaymentRequest) string {
	if pr.Booking != nil {
		return fmt.Sprintf("%s on %s", pr.Booking.ServiceName, pr.Booking.BookingDate)
	}
	if pr.Description != "" {
		return pr.Description
	}
	return "Clinic booking payment"
}

func (s *Service) payURL(reference string) string {
	return fmt.Sprintf("%s/payment/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), reference)
}

// returnURL carries the provider's session id placeholder so the return
// handler can resolve the session even before the webhook lands.
func (s *Service) returnURL(reference string) string {
	return fmt.Sprintf("%s/api/v1/payments/return?reference=%s&session_id={CHECKOUT_SESSION_ID}",
		strings.TrimRight(s.cfg.BaseURL, "/"), reference)
}

func (s *Service) publishRequest(t events.Type, pr *domain.PaymentRequest) {
	payload := map[string]any{
		"reference":    pr.Reference,
		"status":       string(pr.Status),
		"amount":       pr.Amount,
		"payment_type": string(pr.PaymentType),
	}
	if pr.Booking != nil {
		payload["booking_reference"] = pr.Booking.Reference
	}
	s.bus.Publish(events.New(t, payload))
}

func (s *Service) publishBooking(t events.Type, pr *domain.PaymentRequest) {
	payload := map[string]any{"booking_id": pr.BookingID}
	if pr.Booking != nil {
		payload["reference"] = pr.Booking.Reference
		payload["status"] = string(pr.Booking.Status)
		payload["service_name"] = pr.Booking.ServiceName
	}
	s.bus.Publish(events.New(t, payload))
}

func parsePaymentType(raw string) (domain.PaymentType, error) {
	switch domain.PaymentType(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.PaymentTypeDeposit:
		return domain.PaymentTypeDeposit, nil
	case domain.PaymentTypeFull:
		return domain.PaymentTypeFull, nil
	}
	return "", fmt.Errorf("%w: payment type %q", ErrValidation, raw)
}

func amountFor(fullAmount float64, t domain.PaymentType) float64 {
	opts := ComputeOptions(fullAmount)
	if t == domain.PaymentTypeDeposit {
		return opts.Deposit
	}
	return opts.Full
}
