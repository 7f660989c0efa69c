package booking

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
	"clinicbook/internal/modules/pricing"
)

// BookingRepository defines the booking persistence the factory needs.
type BookingRepository interface {
	CreateTx(tx *gorm.DB, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
}

// CustomerRepository upserts the submitting customer inside the booking
// transaction.
type CustomerRepository interface {
	UpsertByEmailTx(tx *gorm.DB, c *domain.Customer) error
}

// SlotRepository claims the catalog slot the submission targets.
type SlotRepository interface {
	ClaimSlotTx(tx *gorm.DB, date, start, end string, types []domain.SlotType) (*domain.AvailabilitySlot, error)
}

// PaymentRequestRepository seeds and re-reads the request attached to a
// booking.
type PaymentRequestRepository interface {
	CreateTx(tx *gorm.DB, p *domain.PaymentRequest) error
	GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentRequest, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
}

// IdempotencyRepository stores submission keys for the dedupe policy.
type IdempotencyRepository interface {
	FindBookingID(ctx context.Context, keyHash string, now time.Time) (int64, error)
	InsertTx(tx *gorm.DB, keyHash string, bookingID int64, expiresAt time.Time) error
}

// PriceResolver runs the live -> fallback -> caller pricing chain.
type PriceResolver interface {
	Resolve(ctx context.Context, sel domain.ServiceSelection, callerAmount float64) pricing.Resolution
}

// NotificationSender covers the two post-commit customer notices.
type NotificationSender interface {
	BookingReceived(ctx context.Context, b *domain.Booking, c *domain.Customer) error
	PaymentRequestIssued(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer, payURL string) error
}

// EventPublisher pushes domain events to the admin stream.
type EventPublisher interface {
	Publish(e events.Event)
}
