package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinicbook/internal/domain"
	"clinicbook/internal/events"
	"clinicbook/internal/modules/pricing"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// Mock repositories
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateTx(tx *gorm.DB, b *domain.Booking) error {
	args := m.Called(tx, b)
	if b != nil && args.Error(0) == nil {
		b.ID = 99 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) UpsertByEmailTx(tx *gorm.DB, c *domain.Customer) error {
	args := m.Called(tx, c)
	if c != nil && args.Error(0) == nil {
		c.ID = 7 // simulate existing/inserted row
	}
	return args.Error(0)
}

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) ClaimSlotTx(tx *gorm.DB, date, start, end string, types []domain.SlotType) (*domain.AvailabilitySlot, error) {
	args := m.Called(tx, date, start, end, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilitySlot), args.Error(1)
}

type MockPaymentRequestRepository struct {
	mock.Mock
}

func (m *MockPaymentRequestRepository) CreateTx(tx *gorm.DB, p *domain.PaymentRequest) error {
	args := m.Called(tx, p)
	if p != nil && args.Error(0) == nil {
		p.ID = 55 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRequest), args.Error(1)
}

func (m *MockPaymentRequestRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	args := m.Called(ctx, id, sentAt)
	return args.Error(0)
}

type MockIdempotencyRepository struct {
	mock.Mock
}

func (m *MockIdempotencyRepository) FindBookingID(ctx context.Context, keyHash string, now time.Time) (int64, error) {
	args := m.Called(ctx, keyHash, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIdempotencyRepository) InsertTx(tx *gorm.DB, keyHash string, bookingID int64, expiresAt time.Time) error {
	args := m.Called(tx, keyHash, bookingID, expiresAt)
	return args.Error(0)
}

type MockPriceResolver struct {
	mock.Mock
}

func (m *MockPriceResolver) Resolve(ctx context.Context, sel domain.ServiceSelection, callerAmount float64) pricing.Resolution {
	args := m.Called(ctx, sel, callerAmount)
	return args.Get(0).(pricing.Resolution)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) BookingReceived(ctx context.Context, b *domain.Booking, c *domain.Customer) error {
	args := m.Called(ctx, b, c)
	return args.Error(0)
}

func (m *MockNotificationSender) PaymentRequestIssued(ctx context.Context, pr *domain.PaymentRequest, b *domain.Booking, c *domain.Customer, payURL string) error {
	args := m.Called(ctx, pr, b, c, payURL)
	return args.Error(0)
}

// stubTxRunner executes the closure directly; the repositories under it are
// mocks, so there is nothing real to roll back.
type stubTxRunner struct {
	calls int
	err   error
}

func (s *stubTxRunner) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubBus struct {
	published []events.Event
}

func (s *stubBus) Publish(e events.Event) { s.published = append(s.published, e) }

type deps struct {
	tx        *stubTxRunner
	bookings  *MockBookingRepository
	customers *MockCustomerRepository
	slots     *MockSlotRepository
	payments  *MockPaymentRequestRepository
	idem      *MockIdempotencyRepository
	pricing   *MockPriceResolver
	notifs    *MockNotificationSender
	bus       *stubBus
}

func newTestService(cfg Config) (*Service, *deps) {
	d := &deps{
		tx:        &stubTxRunner{},
		bookings:  &MockBookingRepository{},
		customers: &MockCustomerRepository{},
		slots:     &MockSlotRepository{},
		payments:  &MockPaymentRequestRepository{},
		idem:      &MockIdempotencyRepository{},
		pricing:   &MockPriceResolver{},
		notifs:    &MockNotificationSender{},
		bus:       &stubBus{},
	}
	svc := &Service{
		tx:        d.tx,
		bookings:  d.bookings,
		customers: d.customers,
		slots:     d.slots,
		payments:  d.payments,
		idem:      d.idem,
		pricing:   d.pricing,
		notifs:    d.notifs,
		bus:       d.bus,
		cfg:       cfg,
		log:       zap.NewNop(),
		now:       func() time.Time { return testNow },
	}
	return svc, d
}

func defaultConfig() Config {
	return Config{
		Currency:          "EUR",
		FrontendURL:       "http://localhost:5173",
		PaymentRequestTTL: 72 * time.Hour,
		IdempotencyKeyTTL: 24 * time.Hour,
		Dedupe:            true,
	}
}

func validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		Service:   "Deep Tissue Massage - In Hour (€50)",
		Schedule:  "2025-03-12T10:00-11:00",
		FirstName: "Ada",
		LastName:  "Byrne",
		Email:     "Ada@Example.com",
		Phone:     "+353 86 123 4567",
	}
}

func TestCreateBookingChargeableFlow(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 50, Source: pricing.SourceLive, ServiceID: 3})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, "2025-03-12", "10:00", "11:00", []domain.SlotType{domain.SlotInHour}).
		Return(&domain.AvailabilitySlot{ID: 12, Date: "2025-03-12", StartTime: "10:00", EndTime: "11:00"}, nil)
	d.bookings.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.payments.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.notifs.On("PaymentRequestIssued", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	d.payments.On("MarkSent", mock.Anything, int64(55), testNow).Return(nil)

	result, err := svc.CreateBooking(context.Background(), validRequest(), "")
	assert.NoError(t, err)
	assert.NotEmpty(t, result.Booking.Reference)
	assert.Equal(t, int64(7), result.Booking.CustomerID)
	assert.Equal(t, "Deep Tissue Massage", result.Booking.ServiceName)
	assert.Equal(t, domain.SlotInHour, result.Booking.SlotType)
	assert.Equal(t, "2025-03-12T10:00:00", result.Booking.StartsAt)
	assert.Equal(t, "ada@example.com", result.Customer.Email)
	if assert.NotNil(t, result.Booking.SlotID) {
		assert.Equal(t, int64(12), *result.Booking.SlotID)
	}

	if assert.NotNil(t, result.PaymentRequest) {
		assert.Equal(t, 50.0, result.PaymentRequest.Amount)
		assert.Equal(t, 50.0, result.PaymentRequest.FullAmount)
		assert.Equal(t, domain.PaymentTypeFull, result.PaymentRequest.PaymentType)
		assert.Equal(t, domain.PaymentRequestSent, result.PaymentRequest.Status)
		if assert.NotNil(t, result.PaymentRequest.ExpiresAt) {
			assert.Equal(t, testNow.Add(72*time.Hour), *result.PaymentRequest.ExpiresAt)
		}
	}
	assert.Contains(t, result.PaymentURL, result.PaymentRequest.Reference)

	d.notifs.AssertNotCalled(t, "BookingReceived", mock.Anything, mock.Anything, mock.Anything)
	if assert.Len(t, d.bus.published, 1) {
		assert.Equal(t, events.BookingCreated, d.bus.published[0].Type)
	}
	d.bookings.AssertExpectations(t)
	d.payments.AssertExpectations(t)
}

func TestCreateBookingFreePathSkipsPaymentRequest(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 0, Source: pricing.SourceNone})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.AvailabilitySlot{ID: 12}, nil)
	d.bookings.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.notifs.On("BookingReceived", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Service = "Pitch Side Cover"

	result, err := svc.CreateBooking(context.Background(), req, "")
	assert.NoError(t, err)
	assert.Nil(t, result.PaymentRequest)
	assert.Empty(t, result.PaymentURL)
	assert.Equal(t, 0.0, result.Booking.Price)

	d.payments.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
	d.notifs.AssertExpectations(t)
}

func TestCreateBookingInvalidSchedule(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	req := validRequest()
	req.Schedule = "2025-03-12 10:00"

	_, err := svc.CreateBooking(context.Background(), req, "")
	assert.ErrorIs(t, err, domain.ErrInvalidScheduleFormat)
	assert.Equal(t, 0, d.tx.calls, "no transaction for a malformed submission")
}

func TestCreateBookingSlotUnavailable(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 50, Source: pricing.SourceLive})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateBooking(context.Background(), validRequest(), "")
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	d.bookings.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything)
	d.notifs.AssertNotCalled(t, "PaymentRequestIssued", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, d.bus.published)
}

func TestCreateBookingDedupeReplaysOriginal(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	original := &domain.Booking{
		ID:        42,
		Reference: "orig-ref",
		Status:    domain.BookingPending,
		Customer:  &domain.Customer{ID: 7, Email: "ada@example.com"},
	}
	pr := &domain.PaymentRequest{ID: 55, Reference: "pr-ref", BookingID: 42, Status: domain.PaymentRequestSent}

	d.idem.On("FindBookingID", mock.Anything, mock.Anything, testNow).Return(int64(42), nil)
	d.bookings.On("GetByID", mock.Anything, int64(42)).Return(original, nil)
	d.payments.On("GetActiveByBookingID", mock.Anything, int64(42)).Return(pr, nil)

	result, err := svc.CreateBooking(context.Background(), validRequest(), "submission-key-1")
	assert.NoError(t, err)
	assert.True(t, result.Deduped)
	assert.Equal(t, "orig-ref", result.Booking.Reference)
	assert.Equal(t, "pr-ref", result.PaymentRequest.Reference)
	assert.Contains(t, result.PaymentURL, "pr-ref")

	assert.Equal(t, 0, d.tx.calls, "replay must not open a transaction")
	d.pricing.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingRepeatPolicyIgnoresKey(t *testing.T) {
	cfg := defaultConfig()
	cfg.Dedupe = false
	svc, d := newTestService(cfg)

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 0, Source: pricing.SourceNone})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.AvailabilitySlot{ID: 12}, nil)
	d.bookings.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.notifs.On("BookingReceived", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := svc.CreateBooking(context.Background(), validRequest(), "submission-key-1")
	assert.NoError(t, err)
	assert.False(t, result.Deduped)

	d.idem.AssertNotCalled(t, "FindBookingID", mock.Anything, mock.Anything, mock.Anything)
	d.idem.AssertNotCalled(t, "InsertTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingNotifyFailureLeavesRequestPending(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 50, Source: pricing.SourceLive})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.AvailabilitySlot{ID: 12}, nil)
	d.bookings.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.payments.On("CreateTx", mock.Anything, mock.Anything).Return(nil)
	d.notifs.On("PaymentRequestIssued", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("mail bounced"))

	result, err := svc.CreateBooking(context.Background(), validRequest(), "")
	assert.NoError(t, err, "a failed notice must not fail the committed booking")
	assert.Equal(t, domain.PaymentRequestPending, result.PaymentRequest.Status)

	d.payments.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingPersistenceFailure(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.pricing.On("Resolve", mock.Anything, mock.Anything, float64(0)).
		Return(pricing.Resolution{Amount: 50, Source: pricing.SourceLive})
	d.customers.On("UpsertByEmailTx", mock.Anything, mock.Anything).Return(nil)
	d.slots.On("ClaimSlotTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.AvailabilitySlot{ID: 12}, nil)
	d.bookings.On("CreateTx", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.CreateBooking(context.Background(), validRequest(), "")
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, d.bus.published)
}

func TestGetByReference(t *testing.T) {
	svc, d := newTestService(defaultConfig())

	d.bookings.On("GetByReference", mock.Anything, "known").
		Return(&domain.Booking{ID: 1, Reference: "known"}, nil)
	d.bookings.On("GetByReference", mock.Anything, "missing").
		Return(nil, gorm.ErrRecordNotFound)

	b, err := svc.GetByReference(context.Background(), "known")
	assert.NoError(t, err)
	assert.Equal(t, "known", b.Reference)

	_, err = svc.GetByReference(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
