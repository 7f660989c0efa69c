package payment

import (
	"context"
	"time"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
)

type paymentRequestStore interface {
	GetByReference(ctx context.Context, reference string) (*domain.PaymentRequest, error)
	GetByCheckoutRef(ctx context.Context, checkoutRef string) (*domain.PaymentRequest, error)
	UpdateAmount(ctx context.Context, id int64, amount float64, paymentType domain.PaymentType) (bool, error)
	SetCheckoutRef(ctx context.Context, id int64, checkoutRef string) (bool, error)
	ClearCheckoutRef(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkPaidIdempotent(ctx context.Context, id int64, transactionID, rawBody string, paidAt time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id int64) (bool, error)
	MarkExpired(ctx context.Context, id int64) (bool, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	RecordFailure(ctx context.Context, id int64, transactionID, reason, rawBody string) error
}

type bookingStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	Confirm(ctx context.Context, id int64) (bool, error)
}

type notifier interface {
	PaymentRequestIssued(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer, payURL string) error
	PaymentReceived(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer) error
	PaymentRequestCancelled(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer) error
}

type publisher interface {
	Publish(e events.Event)
}
