package repository

import (
	"context"
	"errors"
	"time"

	"clinicbook/internal/domain"

	"gorm.io/gorm"
)

type PaymentRequestRepository struct {
	db *gorm.DB
}

func NewPaymentRequestRepository(db *gorm.DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{db: db}
}

func (r *PaymentRequestRepository) Create(ctx context.Context, p *domain.PaymentRequest) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRequestRepository) CreateTx(tx *gorm.DB, p *domain.PaymentRequest) error {
	return tx.Create(p).Error
}

func (r *PaymentRequestRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentRequest, error) {
	var p domain.PaymentRequest
	if err := r.db.WithContext(ctx).Preload("Booking").Preload("Customer").
		Where("reference = ?", reference).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRequestRepository) GetByCheckoutRef(ctx context.Context, checkoutRef string) (*domain.PaymentRequest, error) {
	var p domain.PaymentRequest
	if err := r.db.WithContext(ctx).Preload("Booking").Preload("Customer").
		Where("checkout_ref = ?", checkoutRef).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveByBookingID returns the booking's non-terminal request, if one
// exists. Used by idempotent replays and the booking cancellation flow; it is
// also what keeps a booking at one active request, since the only insert path
// runs on a freshly created booking.
func (r *PaymentRequestRepository) GetActiveByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentRequest, error) {
	var p domain.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status IN ?", bookingID, domain.ActivePaymentStatuses).
		Order("id").First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns requests newest-first, optionally filtered by status.
func (r *PaymentRequestRepository) List(ctx context.Context, status domain.PaymentRequestStatus, limit, offset int) ([]domain.PaymentRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.PaymentRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []domain.PaymentRequest
	if err := q.Preload("Booking").Preload("Customer").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// UpdateAmount persists a deposit/full choice. A value change, not a state
// change: only non-terminal rows accept it.
func (r *PaymentRequestRepository) UpdateAmount(ctx context.Context, id int64, amount float64, paymentType domain.PaymentType) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Updates(map[string]interface{}{
			"amount":       amount,
			"payment_type": paymentType,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetCheckoutRef records the provider session handed out for this request.
func (r *PaymentRequestRepository) SetCheckoutRef(ctx context.Context, id int64, checkoutRef string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Update("checkout_ref", checkoutRef)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearCheckoutRef detaches an expired provider session so a new one can be
// issued. The request's own expiry clock is untouched.
func (r *PaymentRequestRepository) ClearCheckoutRef(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Update("checkout_ref", "").Error
}

// MarkSent flips pending to sent and stamps sent_at. Re-sending an already
// sent request only refreshes the timestamp.
func (r *PaymentRequestRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Updates(map[string]interface{}{
			"status":  domain.PaymentRequestSent,
			"sent_at": sentAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPaidIdempotent settles the request exactly once. The conditional write
// is the idempotency guard: a replayed callback finds no non-terminal row to
// update and reports changed=false, so callers skip the side effects. The raw
// callback body is persisted with the terminal row for audit.
func (r *PaymentRequestRepository) MarkPaidIdempotent(ctx context.Context, id int64, transactionID, rawBody string, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Updates(map[string]interface{}{
			"status":         domain.PaymentRequestPaid,
			"transaction_id": transactionID,
			"raw_body":       rawBody,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var existing int64
	if err := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ?", id).Count(&existing).Error; err != nil {
		return false, err
	}
	if existing == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

// MarkCancelled is the terminal cancel, same conditional-write shape as
// MarkPaidIdempotent.
func (r *PaymentRequestRepository) MarkCancelled(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Update("status", domain.PaymentRequestCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkExpired closes a single overdue request, used by the on-read check.
func (r *PaymentRequestRepository) MarkExpired(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Update("status", domain.PaymentRequestExpired)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ExpireDue closes every non-terminal request whose expiry clock has run out.
// Run by the sweeper binary.
func (r *PaymentRequestRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= ?", domain.ActivePaymentStatuses, now).
		Update("status", domain.PaymentRequestExpired)
	return res.RowsAffected, res.Error
}

// RecordFailure stores the provider's failure report without leaving the
// retryable state.
func (r *PaymentRequestRepository) RecordFailure(ctx context.Context, id int64, transactionID, reason, rawBody string) error {
	updates := map[string]interface{}{
		"failure_reason": reason,
		"raw_body":       rawBody,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}
	err := r.db.WithContext(ctx).Model(&domain.PaymentRequest{}).
		Where("id = ? AND status IN ?", id, domain.ActivePaymentStatuses).
		Updates(updates).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
