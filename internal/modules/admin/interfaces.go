package admin

import (
	"context"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
	"clinicbook/internal/modules/payment"
)

type AdminUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
}

type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, int64, error)
	Confirm(ctx context.Context, id int64) (bool, error)
	Cancel(ctx context.Context, id int64) (bool, error)
}

type SlotRepository interface {
	List(ctx context.Context, from, to string) ([]domain.AvailabilitySlot, error)
	Create(ctx context.Context, slot *domain.AvailabilitySlot) error
	GetByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	ReleaseSlot(ctx context.Context, id int64) error
}

type PaymentRequestRepository interface {
	List(ctx context.Context, status domain.PaymentRequestStatus, limit, offset int) ([]domain.PaymentRequest, int64, error)
	GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentRequest, error)
}

type NotificationRepository interface {
	List(ctx context.Context, nType domain.NotificationType, limit, offset int) ([]domain.Notification, int64, error)
}

// PaymentManager is the slice of the payment service the admin surface
// drives: re-sending and retiring requests, never settling them.
type PaymentManager interface {
	Resend(ctx context.Context, reference, paymentType string) (*payment.RequestView, error)
	Cancel(ctx context.Context, reference string, notify bool) (*payment.RequestView, error)
}

type NotificationSender interface {
	BookingConfirmed(ctx context.Context, b *domain.Booking, c *domain.Customer) error
}

type TokenIssuer interface {
	GenerateToken(userID int64, email, role string) (string, error)
}

type EventPublisher interface {
	Publish(e events.Event)
}
