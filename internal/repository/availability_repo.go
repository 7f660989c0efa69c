package repository

import (
	"context"

	"clinicbook/internal/domain"

	"gorm.io/gorm"
)

type AvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListAvailableFrom returns open slots dated on or after fromDate, optionally
// restricted to the given slot types, ordered by (date, start).
func (r *AvailabilityRepository) ListAvailableFrom(ctx context.Context, fromDate string, types []domain.SlotType) ([]domain.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).
		Where("is_available = ? AND date >= ?", true, fromDate)
	if len(types) > 0 {
		q = q.Where("slot_type IN ?", types)
	}
	var slots []domain.AvailabilitySlot
	if err := q.Order("date, start_time").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// ListAvailableOn is ListAvailableFrom restricted to a single date.
func (r *AvailabilityRepository) ListAvailableOn(ctx context.Context, date string, types []domain.SlotType) ([]domain.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).
		Where("is_available = ? AND date = ?", true, date)
	if len(types) > 0 {
		q = q.Where("slot_type IN ?", types)
	}
	var slots []domain.AvailabilitySlot
	if err := q.Order("date, start_time").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// ClaimSlotTx flips one matching open slot to unavailable and returns it.
// The flip is a conditional update on is_available, so two transactions
// racing for the last matching row cannot both win; the loser moves to the
// next candidate and ends with gorm.ErrRecordNotFound when none remain.
func (r *AvailabilityRepository) ClaimSlotTx(tx *gorm.DB, date, start, end string, types []domain.SlotType) (*domain.AvailabilitySlot, error) {
	q := tx.Where("date = ? AND start_time = ? AND end_time = ? AND is_available = ?", date, start, end, true)
	if len(types) > 0 {
		q = q.Where("slot_type IN ?", types)
	}
	var candidates []domain.AvailabilitySlot
	if err := q.Order("id").Find(&candidates).Error; err != nil {
		return nil, err
	}

	for i := range candidates {
		res := tx.Model(&domain.AvailabilitySlot{}).
			Where("id = ? AND is_available = ?", candidates[i].ID, true).
			Update("is_available", false)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			candidates[i].IsAvailable = false
			return &candidates[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ReleaseSlot reopens a previously claimed slot (booking cancelled).
func (r *AvailabilityRepository) ReleaseSlot(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&domain.AvailabilitySlot{}).
		Where("id = ?", id).
		Update("is_available", true).Error
}

// List returns all slots in the date range regardless of availability, for
// the admin surface.
func (r *AvailabilityRepository) List(ctx context.Context, from, to string) ([]domain.AvailabilitySlot, error) {
	q := r.db.WithContext(ctx).Model(&domain.AvailabilitySlot{})
	if from != "" {
		q = q.Where("date >= ?", from)
	}
	if to != "" {
		q = q.Where("date <= ?", to)
	}
	var slots []domain.AvailabilitySlot
	if err := q.Order("date, start_time").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *AvailabilityRepository) Create(ctx context.Context, slot *domain.AvailabilitySlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (*domain.AvailabilitySlot, error) {
	var slot domain.AvailabilitySlot
	if err := r.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *AvailabilityRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res := r.db.WithContext(ctx).Model(&domain.AvailabilitySlot{}).
		Where("id = ?", id).
		Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
