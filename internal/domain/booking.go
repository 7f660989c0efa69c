package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is created once from a submitted form and only status-mutated
// afterwards (manual confirmation, payment, cancellation). StartsAt is the
// combined date-time value the legacy data carries; BookingDate/StartTime/
// EndTime are the separate fields alongside it.
type Booking struct {
	ID               int64         `json:"id" gorm:"primaryKey"`
	Reference        string        `json:"reference" gorm:"size:36;uniqueIndex;not null"`
	CustomerID       int64         `json:"customer_id" gorm:"not null;index"`
	ServiceName      string        `json:"service_name" gorm:"size:255;not null"`
	ServiceSelection string        `json:"service_selection" gorm:"size:255;not null"`
	SlotType         SlotType      `json:"slot_type,omitempty" gorm:"size:20"`
	BookingDate      string        `json:"booking_date" gorm:"size:10;not null;index"`
	StartTime        string        `json:"start_time" gorm:"size:5"`
	EndTime          string        `json:"end_time" gorm:"size:5"`
	StartsAt         string        `json:"starts_at" gorm:"size:19;not null"`
	SlotID           *int64        `json:"slot_id,omitempty" gorm:"index"`
	Price            float64       `json:"price"`
	Status           BookingStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Notes            string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (Booking) TableName() string { return "bookings" }

func (s BookingStatus) Terminal() bool { return s == BookingCancelled }
