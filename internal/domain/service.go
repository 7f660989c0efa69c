package domain

import "time"

type PricingKind string

const (
	PricingStandard      PricingKind = "standard"
	PricingTimeDependent PricingKind = "time_dependent"
)

// Service is a catalog entry the clinic offers. Pricing is either a single
// flat price or an in-hour/out-of-hour pair; the kind column says which of
// the amount columns are meaningful. Code never reads the columns directly,
// it goes through Pricing().
type Service struct {
	ID             int64       `json:"id" gorm:"primaryKey"`
	Name           string      `json:"name" gorm:"size:255;uniqueIndex;not null"`
	Category       string      `json:"category" gorm:"size:100"`
	Description    string      `json:"description,omitempty" gorm:"type:text"`
	PricingKind    PricingKind `json:"pricing_kind" gorm:"size:20;not null;default:'standard'"`
	Price          float64     `json:"price,omitempty"`
	InHourPrice    float64     `json:"in_hour_price,omitempty"`
	OutOfHourPrice float64     `json:"out_of_hour_price,omitempty"`
	IsActive       bool        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

// Pricing is the tagged union over the two service price shapes. Exactly one
// variant is non-nil.
type Pricing struct {
	Standard      *StandardPricing
	TimeDependent *TimeDependentPricing
}

type StandardPricing struct {
	Price float64
}

type TimeDependentPricing struct {
	InHour    float64
	OutOfHour float64
}

func (s *Service) Pricing() Pricing {
	if s.PricingKind == PricingTimeDependent {
		return Pricing{TimeDependent: &TimeDependentPricing{
			InHour:    s.InHourPrice,
			OutOfHour: s.OutOfHourPrice,
		}}
	}
	return Pricing{Standard: &StandardPricing{Price: s.Price}}
}

// AmountFor returns the price for a slot type. A standard price applies to
// any slot type; a time-dependent price requires the matching tag, and an
// untagged request against it falls back to the in-hour amount. The second
// return is false when the selected variant carries no positive amount.
func (p Pricing) AmountFor(slotType SlotType) (float64, bool) {
	switch {
	case p.Standard != nil:
		return p.Standard.Price, p.Standard.Price > 0
	case p.TimeDependent != nil:
		amount := p.TimeDependent.InHour
		if slotType == SlotOutOfHour {
			amount = p.TimeDependent.OutOfHour
		}
		return amount, amount > 0
	}
	return 0, false
}

