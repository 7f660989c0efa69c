package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
	"clinicbook/internal/modules/payment"
)

// Service is the staff-facing surface: it reads what the public flow wrote
// and drives the manual transitions (confirm, cancel, resend). Settlement
// itself stays with the payment manager.
type Service struct {
	admins   AdminUserRepository
	bookings BookingRepository
	slots    SlotRepository
	payments PaymentRequestRepository
	manager  PaymentManager
	notes    NotificationRepository
	notifs   NotificationSender
	tokens   TokenIssuer
	bus      EventPublisher
	log      *zap.Logger
}

func NewService(
	admins AdminUserRepository,
	bookings BookingRepository,
	slots SlotRepository,
	payments PaymentRequestRepository,
	manager PaymentManager,
	notes NotificationRepository,
	notifs NotificationSender,
	tokens TokenIssuer,
	bus EventPublisher,
	log *zap.Logger,
) *Service {
	return &Service{
		admins:   admins,
		bookings: bookings,
		slots:    slots,
		payments: payments,
		manager:  manager,
		notes:    notes,
		notifs:   notifs,
		tokens:   tokens,
		bus:      bus,
		log:      log,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.admins.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	user.PasswordHash = ""
	return &LoginResult{Token: token, Admin: user}, nil
}

func (s *Service) ListBookings(ctx context.Context, status string, limit, offset int) ([]domain.Booking, int64, error) {
	items, total, err := s.bookings.List(ctx, domain.BookingStatus(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return items, total, nil
}

func (s *Service) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

// ConfirmBooking is the manual confirmation for free bookings and
// pay-on-arrival arrangements. Paid bookings confirm through the payment
// path; re-confirming here is a conflict, not a crash.
func (s *Service) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	changed, err := s.bookings.Confirm(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: booking is %s", ErrStateConflict, b.Status)
	}

	if b.Customer != nil {
		if err := s.notifs.BookingConfirmed(ctx, b, b.Customer); err != nil {
			s.log.Error("booking confirmation notice", zap.Int64("booking_id", id), zap.Error(err))
		}
	}
	s.bus.Publish(events.New(events.BookingConfirmed, map[string]any{
		"booking_id": b.ID,
		"reference":  b.Reference,
		"status":     string(b.Status),
	}))
	return b, nil
}

// CancelBooking retires the booking, reopens its claimed slot and silently
// cancels any active payment request so a stale pay link cannot settle a
// cancelled appointment.
func (s *Service) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	changed, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: booking is %s", ErrStateConflict, b.Status)
	}

	if b.SlotID != nil {
		if err := s.slots.ReleaseSlot(ctx, *b.SlotID); err != nil {
			s.log.Error("release slot", zap.Int64("slot_id", *b.SlotID), zap.Error(err))
		}
	}

	pr, err := s.payments.GetActiveByBookingID(ctx, id)
	switch {
	case err == nil:
		if _, err := s.manager.Cancel(ctx, pr.Reference, false); err != nil {
			s.log.Error("retire payment request", zap.String("reference", pr.Reference), zap.Error(err))
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.log.Error("find active payment request", zap.Int64("booking_id", id), zap.Error(err))
	}

	s.log.Info("booking cancelled", zap.Int64("booking_id", id), zap.String("reference", b.Reference))
	return b, nil
}

// ResendPaymentRequest delegates to the payment manager, which owns the
// amount switch and the sent mark.
func (s *Service) ResendPaymentRequest(ctx context.Context, reference, paymentType string) (*payment.RequestView, error) {
	return s.manager.Resend(ctx, reference, paymentType)
}

// CancelPaymentRequest retires a request on the admin's behalf; silent
// cancels skip the customer email.
func (s *Service) CancelPaymentRequest(ctx context.Context, reference string, silent bool) (*payment.RequestView, error) {
	return s.manager.Cancel(ctx, reference, !silent)
}

func (s *Service) ListPaymentRequests(ctx context.Context, status string, limit, offset int) ([]domain.PaymentRequest, int64, error) {
	items, total, err := s.payments.List(ctx, domain.PaymentRequestStatus(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list payment requests: %w", err)
	}
	return items, total, nil
}

func (s *Service) ListSlots(ctx context.Context, from, to string) ([]domain.AvailabilitySlot, error) {
	slots, err := s.slots.List(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *Service) CreateSlot(ctx context.Context, req CreateSlotRequest) (*domain.AvailabilitySlot, error) {
	if _, err := time.Parse(domain.DateFormat, req.Date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrValidation, req.Date)
	}
	start, err := time.Parse(domain.TimeFormat, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start time %q", ErrValidation, req.StartTime)
	}
	end, err := time.Parse(domain.TimeFormat, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end time %q", ErrValidation, req.EndTime)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	slot := &domain.AvailabilitySlot{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SlotType:    domain.SlotType(req.SlotType),
		IsAvailable: true,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	s.log.Info("slot published",
		zap.String("date", slot.Date),
		zap.String("start", slot.StartTime),
		zap.String("type", string(slot.SlotType)))
	return slot, nil
}

// ToggleSlot flips manual availability. It does not touch bookings that
// already claimed the slot.
func (s *Service) ToggleSlot(ctx context.Context, id int64, available bool) (*domain.AvailabilitySlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load slot: %w", err)
	}
	if err := s.slots.SetAvailability(ctx, id, available); err != nil {
		return nil, fmt.Errorf("update slot: %w", err)
	}
	slot.IsAvailable = available
	return slot, nil
}

func (s *Service) ListNotifications(ctx context.Context, nType string, limit, offset int) ([]domain.Notification, int64, error) {
	items, total, err := s.notes.List(ctx, domain.NotificationType(nType), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}
