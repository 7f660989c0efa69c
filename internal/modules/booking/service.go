package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
	"clinicbook/internal/modules/pricing"
	"clinicbook/internal/repository"
)

// Config carries the booking-flow settings resolved at startup.
type Config struct {
	Currency          string
	FrontendURL       string
	PaymentRequestTTL time.Duration
	IdempotencyKeyTTL time.Duration
	Dedupe            bool
}

// Service turns a submitted booking form into the customer, booking and
// payment request rows, all inside one transaction so a slot is never burned
// on a submission that failed halfway.
type Service struct {
	tx        repository.TxRunner
	bookings  BookingRepository
	customers CustomerRepository
	slots     SlotRepository
	payments  PaymentRequestRepository
	idem      IdempotencyRepository
	pricing   PriceResolver
	notifs    NotificationSender
	bus       EventPublisher
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

func NewService(
	tx repository.TxRunner,
	bookings BookingRepository,
	customers CustomerRepository,
	slots SlotRepository,
	payments PaymentRequestRepository,
	idem IdempotencyRepository,
	pricing PriceResolver,
	notifs NotificationSender,
	bus EventPublisher,
	cfg Config,
	log *zap.Logger,
) *Service {
	return &Service{
		tx:        tx,
		bookings:  bookings,
		customers: customers,
		slots:     slots,
		payments:  payments,
		idem:      idem,
		pricing:   pricing,
		notifs:    notifs,
		bus:       bus,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// CreateBooking handles one form submission. idemKey is the raw
// X-Idempotency-Key header, empty when the client sent none.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest, idemKey string) (*CreateBookingResult, error) {
	window, err := domain.ParseScheduleWindow(req.Schedule)
	if err != nil {
		return nil, err
	}
	sel := domain.ParseServiceSelection(req.Service)
	if sel.Name == "" {
		return nil, fmt.Errorf("%w: empty service selection", ErrValidation)
	}

	if s.cfg.Dedupe && idemKey != "" {
		if replay, ok := s.replayForKey(ctx, idemKey); ok {
			s.log.Info("booking submission deduplicated",
				zap.String("reference", replay.Booking.Reference))
			return replay, nil
		}
	}

	price := s.pricing.Resolve(ctx, sel, req.Amount)

	customer := &domain.Customer{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
	}
	booking := &domain.Booking{
		Reference:        uuid.NewString(),
		ServiceName:      sel.Name,
		ServiceSelection: sel.Raw,
		SlotType:         sel.SlotType,
		BookingDate:      window.Date,
		StartTime:        window.Start,
		EndTime:          window.End,
		StartsAt:         window.StartsAt(),
		Price:            price.Amount,
		Status:           domain.BookingPending,
		Notes:            req.Notes,
	}
	var pr *domain.PaymentRequest

	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.customers.UpsertByEmailTx(tx, customer); err != nil {
			return fmt.Errorf("upsert customer: %w", err)
		}
		booking.CustomerID = customer.ID

		slot, err := s.slots.ClaimSlotTx(tx, window.Date, window.Start, window.End, sel.SlotType.Filter())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotUnavailable
			}
			return fmt.Errorf("claim slot: %w", err)
		}
		booking.SlotID = &slot.ID

		if err := s.bookings.CreateTx(tx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		if price.Chargeable() {
			expiresAt := s.now().Add(s.cfg.PaymentRequestTTL)
			pr = &domain.PaymentRequest{
				Reference:   uuid.NewString(),
				BookingID:   booking.ID,
				CustomerID:  customer.ID,
				Amount:      price.Amount,
				FullAmount:  price.Amount,
				PaymentType: domain.PaymentTypeFull,
				Currency:    s.cfg.Currency,
				Status:      domain.PaymentRequestPending,
				Description: fmt.Sprintf("%s on %s", sel.Name, window.Date),
				ExpiresAt:   &expiresAt,
			}
			if err := s.payments.CreateTx(tx, pr); err != nil {
				return fmt.Errorf("insert payment request: %w", err)
			}
		}

		if s.cfg.Dedupe && idemKey != "" {
			keyExpiry := s.now().Add(s.cfg.IdempotencyKeyTTL)
			if err := s.idem.InsertTx(tx, repository.HashKey(idemKey), booking.ID, keyExpiry); err != nil {
				return fmt.Errorf("record idempotency key: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotUnavailable) {
			return nil, ErrSlotUnavailable
		}
		s.log.Error("create booking", zap.String("schedule", req.Schedule), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	booking.Customer = customer
	result := &CreateBookingResult{Booking: booking, Customer: customer, PaymentRequest: pr}
	s.afterCreate(ctx, result, price.Source)
	return result, nil
}

// GetByReference is the public status view behind the confirmation page.
func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

// afterCreate runs the post-commit side effects. None of them may fail the
// booking: the rows are already committed, so failures are logged and left
// for the admin surface to retry.
func (s *Service) afterCreate(ctx context.Context, r *CreateBookingResult, priceSource pricing.Source) {
	if r.PaymentRequest != nil {
		r.PaymentURL = s.payURL(r.PaymentRequest.Reference)
		if err := s.notifs.PaymentRequestIssued(ctx, r.PaymentRequest, r.Booking, r.Customer, r.PaymentURL); err != nil {
			s.log.Error("payment request notice",
				zap.String("reference", r.PaymentRequest.Reference), zap.Error(err))
		} else if err := s.payments.MarkSent(ctx, r.PaymentRequest.ID, s.now()); err != nil {
			s.log.Warn("mark payment request sent",
				zap.String("reference", r.PaymentRequest.Reference), zap.Error(err))
		} else {
			r.PaymentRequest.Status = domain.PaymentRequestSent
		}
	} else if err := s.notifs.BookingReceived(ctx, r.Booking, r.Customer); err != nil {
		s.log.Error("booking notice", zap.String("reference", r.Booking.Reference), zap.Error(err))
	}

	s.bus.Publish(events.New(events.BookingCreated, map[string]any{
		"reference":    r.Booking.Reference,
		"service":      r.Booking.ServiceName,
		"date":         r.Booking.BookingDate,
		"start_time":   r.Booking.StartTime,
		"price_source": string(priceSource),
		"chargeable":   r.PaymentRequest != nil,
	}))
	s.log.Info("booking created",
		zap.String("reference", r.Booking.Reference),
		zap.String("service", r.Booking.ServiceName),
		zap.String("date", r.Booking.BookingDate),
		zap.Bool("chargeable", r.PaymentRequest != nil))
}

// replayForKey returns the original submission result for a seen key. Any
// lookup trouble falls through to a fresh create; dedupe is best effort.
func (s *Service) replayForKey(ctx context.Context, key string) (*CreateBookingResult, bool) {
	bookingID, err := s.idem.FindBookingID(ctx, repository.HashKey(key), s.now())
	if err != nil {
		s.log.Warn("idempotency lookup", zap.Error(err))
		return nil, false
	}
	if bookingID == 0 {
		return nil, false
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		s.log.Warn("idempotency replay load", zap.Int64("booking_id", bookingID), zap.Error(err))
		return nil, false
	}

	result := &CreateBookingResult{Booking: b, Customer: b.Customer, Deduped: true}
	if pr, err := s.payments.GetActiveByBookingID(ctx, bookingID); err == nil {
		result.PaymentRequest = pr
		result.PaymentURL = s.payURL(pr.Reference)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("idempotency replay payment request", zap.Int64("booking_id", bookingID), zap.Error(err))
	}
	return result, true
}

func (s *Service) payURL(reference string) string {
	return fmt.Sprintf("%s/payment/%s", strings.TrimRight(s.cfg.FrontendURL, "/"), reference)
}
