package repository

import (
	"context"

	"clinicbook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) CreateTx(tx *gorm.DB, b *domain.Booking) error {
	return tx.Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Customer").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Preload("Customer").
		Where("reference = ?", reference).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns bookings newest-first, optionally filtered by status.
func (r *BookingRepository) List(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []domain.Booking
	if err := q.Preload("Customer").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Confirm moves a pending booking to confirmed. The conditional write makes
// concurrent confirmations (a webhook racing a manual click) collapse into
// one winner; false means somebody else got there first or the row is not
// confirmable.
func (r *BookingRepository) Confirm(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingPending).
		Update("status", domain.BookingConfirmed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Cancel moves a booking out of pending/confirmed. Already-cancelled rows are
// left untouched.
func (r *BookingRepository) Cancel(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", id, []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}).
		Update("status", domain.BookingCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
