package domain

import "time"

// IdempotencyKey pins a submission attempt to the booking it produced. Keys
// are stored as sha256 hex, never raw, and age out after the configured TTL.
type IdempotencyKey struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	KeyHash   string    `json:"key_hash" gorm:"size:64;uniqueIndex;not null"`
	BookingID int64     `json:"booking_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

func (IdempotencyKey) TableName() string { return "idempotency_keys" }
