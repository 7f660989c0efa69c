package notification

import (
	"context"
	"errors"
	"fmt"

	"clinicbook/internal/domain"
	"clinicbook/internal/mailer"

	"go.uber.org/zap"
)

// ErrSendFailed wraps every dispatch failure. It is non-fatal by contract:
// callers log it and carry on, never roll back the booking or payment that
// triggered the notice.
var ErrSendFailed = errors.New("notification send failed")

type auditLog interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// Service renders and dispatches customer notices. Every attempt, sent or
// failed, is recorded as an audit row.
type Service struct {
	mail  mailer.Mailer
	audit auditLog
	log   *zap.Logger
}

func NewService(mail mailer.Mailer, audit auditLog, log *zap.Logger) *Service {
	return &Service{mail: mail, audit: audit, log: log}
}

// BookingReceived acknowledges a free-path booking that awaits manual
// scheduling.
func (s *Service) BookingReceived(ctx context.Context, b *domain.Booking, c *domain.Customer) error {
	subject := bookingReceivedSubject(b.ServiceName)
	text, html := bookingReceivedBody(c.FirstName, b.ServiceName, b.StartsAt)
	return s.dispatch(ctx, domain.NotificationBookingReceived, c, subject, text, html, &b.ID, nil)
}

// BookingConfirmed tells the customer their appointment is locked in.
func (s *Service) BookingConfirmed(ctx context.Context, b *domain.Booking, c *domain.Customer) error {
	subject := bookingConfirmedSubject(b.ServiceName)
	text, html := bookingConfirmedBody(c.FirstName, b.ServiceName, b.StartsAt)
	return s.dispatch(ctx, domain.NotificationBookingConfirmed, c, subject, text, html, &b.ID, nil)
}

// PaymentRequestIssued carries the current amount and the pay link. Re-sent
// whenever the requested amount changes.
func (s *Service) PaymentRequestIssued(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer, payURL string) error {
	subject := paymentRequestSubject(b.ServiceName)
	text, html := paymentRequestBody(c.FirstName, b.ServiceName, formatAmount(pr.Amount, pr.Currency), payURL)
	return s.dispatch(ctx, domain.NotificationPaymentRequest, c, subject, text, html, &b.ID, &pr.ID)
}

// PaymentReceived is the settlement confirmation. The payment flow guarantees
// it fires at most once per request; this service just records what it sent.
func (s *Service) PaymentReceived(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer) error {
	subject := paymentReceivedSubject(b.ServiceName)
	text, html := paymentReceivedBody(c.FirstName, b.ServiceName, formatAmount(pr.Amount, pr.Currency), b.StartsAt)
	return s.dispatch(ctx, domain.NotificationPaymentReceived, c, subject, text, html, &b.ID, &pr.ID)
}

// PaymentRequestCancelled is skipped entirely by the silent-cancel path.
func (s *Service) PaymentRequestCancelled(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer) error {
	subject := paymentRequestCancelledSubject(b.ServiceName)
	text, html := paymentRequestCancelledBody(c.FirstName, b.ServiceName)
	return s.dispatch(ctx, domain.NotificationPaymentRequestCancelled, c, subject, text, html, &b.ID, &pr.ID)
}

func (s *Service) dispatch(ctx context.Context, nType domain.NotificationType, c *domain.Customer, subject, text, html string, bookingID, paymentRequestID *int64) error {
	row := &domain.Notification{
		Type:             nType,
		Channel:          "email",
		Recipient:        c.Email,
		Subject:          subject,
		Body:             text,
		BookingID:        bookingID,
		PaymentRequestID: paymentRequestID,
		Status:           domain.NotificationSent,
	}

	_, sendErr := s.mail.Send(c.Email, c.FullName(), subject, text, html)
	if sendErr != nil {
		row.Status = domain.NotificationFailed
		row.Error = sendErr.Error()
	}

	if err := s.audit.Create(ctx, row); err != nil {
		s.log.Error("notification audit write failed",
			zap.String("type", string(nType)),
			zap.String("recipient", c.Email),
			zap.Error(err))
	}

	if sendErr != nil {
		s.log.Warn("notification send failed",
			zap.String("type", string(nType)),
			zap.String("recipient", c.Email),
			zap.Error(sendErr))
		return fmt.Errorf("%w: %v", ErrSendFailed, sendErr)
	}
	return nil
}
