package availability

import "clinicbook/internal/domain"

// ResolveQuery is the availability request: the tier-tagged service selection
// label plus an optional exact date.
type ResolveQuery struct {
	Service string
	Date    string
}

// ResolvedSlot is one bookable option. Key is the composite value the booking
// form echoes back ("date|start-end"); Label is the human text, which omits
// the date when the query asked for a specific day.
type ResolvedSlot struct {
	Key       string          `json:"key"`
	Date      string          `json:"date"`
	StartTime string          `json:"start_time"`
	EndTime   string          `json:"end_time"`
	SlotType  domain.SlotType `json:"slot_type"`
	Label     string          `json:"label"`
}

// Result carries the slots plus the empty-state message. Message is set only
// when Slots is empty and distinguishes "everything today is already past"
// from "nothing published at all".
type Result struct {
	Slots   []ResolvedSlot `json:"slots"`
	Message string         `json:"message,omitempty"`
}

const (
	msgNoSlotsToday = "No remaining slots today: the published times have already passed. Try the next available date."
	msgNoSlots      = "No available slots for this selection."
)
