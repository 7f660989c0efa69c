package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"clinicbook/internal/domain"

	"gorm.io/gorm"
)

type IdempotencyRepository struct {
	db *gorm.DB
}

func NewIdempotencyRepository(db *gorm.DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

// HashKey normalizes a client-supplied idempotency key for storage. Raw keys
// never touch the database.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// FindBookingID returns the booking a previous attempt with this key
// produced, or 0 when the key is unseen or aged out.
func (r *IdempotencyRepository) FindBookingID(ctx context.Context, keyHash string, now time.Time) (int64, error) {
	var row domain.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("key_hash = ? AND expires_at > ?", keyHash, now).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.BookingID, nil
}

// InsertTx pins the key to the booking it produced. Losing the unique index
// race to a concurrent retry is fine: both attempts carry the same key, and
// the reader path resolves to whichever booking won.
func (r *IdempotencyRepository) InsertTx(tx *gorm.DB, keyHash string, bookingID int64, expiresAt time.Time) error {
	row := domain.IdempotencyKey{
		KeyHash:   keyHash,
		BookingID: bookingID,
		ExpiresAt: expiresAt,
	}
	if err := tx.Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

// DeleteExpired purges aged-out keys. Run by the sweeper binary.
func (r *IdempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
