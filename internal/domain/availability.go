package domain

import "time"

type SlotType string

const (
	SlotInHour    SlotType = "in-hour"
	SlotOutOfHour SlotType = "out-of-hour"
)

// Filter returns the slot-type restriction a selection tag implies: the tag
// itself, or nil (unrestricted) for untagged flat-price selections.
func (t SlotType) Filter() []SlotType {
	if t == "" {
		return nil
	}
	return []SlotType{t}
}

// Date and time-of-day fields are stored as strings in the same format the
// booking form submits them ("2006-01-02", "15:04"). Lexicographic order on
// these formats matches chronological order, which the slot queries rely on.
const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04"
	DateTimeFormat = "2006-01-02T15:04:05"
)

// AvailabilitySlot is a bookable time block published by the clinic. Rows are
// created and toggled through the admin surface; the booking flow only reads
// them, except for the conditional claim at acceptance time. Duplicate
// (date, start, end) rows can and do exist.
type AvailabilitySlot struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Date        string    `json:"date" gorm:"size:10;not null;index:idx_slots_date"`
	StartTime   string    `json:"start_time" gorm:"size:5;not null"`
	EndTime     string    `json:"end_time" gorm:"size:5;not null"`
	SlotType    SlotType  `json:"slot_type" gorm:"size:20;not null;default:'in-hour'"`
	IsAvailable bool      `json:"is_available" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AvailabilitySlot) TableName() string { return "availability_slots" }
