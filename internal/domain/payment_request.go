package domain

import "time"

type PaymentRequestStatus string

const (
	PaymentRequestPending   PaymentRequestStatus = "pending"
	PaymentRequestSent      PaymentRequestStatus = "sent"
	PaymentRequestPaid      PaymentRequestStatus = "paid"
	PaymentRequestCancelled PaymentRequestStatus = "cancelled"
	PaymentRequestExpired   PaymentRequestStatus = "expired"
)

type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypeFull    PaymentType = "full"
)

// paymentTransitions is the whole lifecycle: pending -> sent -> terminal.
// A webhook can race the sent mark, so pending -> paid is accepted as well;
// the terminal states admit nothing.
var paymentTransitions = map[PaymentRequestStatus][]PaymentRequestStatus{
	PaymentRequestPending: {PaymentRequestSent, PaymentRequestPaid, PaymentRequestCancelled, PaymentRequestExpired},
	PaymentRequestSent:    {PaymentRequestPaid, PaymentRequestCancelled, PaymentRequestExpired},
}

func (s PaymentRequestStatus) Terminal() bool {
	switch s {
	case PaymentRequestPaid, PaymentRequestCancelled, PaymentRequestExpired:
		return true
	}
	return false
}

func (s PaymentRequestStatus) CanTransitionTo(next PaymentRequestStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ActivePaymentStatuses are the non-terminal states a conditional update may
// move out of.
var ActivePaymentStatuses = []PaymentRequestStatus{PaymentRequestPending, PaymentRequestSent}

// PaymentRequest tracks an intent to collect a specific amount against a
// booking. Amount is whatever is currently being asked for (full at creation,
// possibly the deposit after selection); FullAmount is the resolved price the
// options are computed from. Rows are never deleted, terminal rows are the
// audit trail.
type PaymentRequest struct {
	ID            int64                `json:"id" gorm:"primaryKey"`
	Reference     string               `json:"reference" gorm:"size:36;uniqueIndex;not null"`
	BookingID     int64                `json:"booking_id" gorm:"not null;index"`
	CustomerID    int64                `json:"customer_id" gorm:"not null;index"`
	Amount        float64              `json:"amount" gorm:"not null"`
	FullAmount    float64              `json:"full_amount" gorm:"not null"`
	PaymentType   PaymentType          `json:"payment_type" gorm:"size:10;not null;default:'full'"`
	Currency      string               `json:"currency" gorm:"size:3;not null;default:'EUR'"`
	Status        PaymentRequestStatus `json:"status" gorm:"size:12;not null;default:'pending';index"`
	Description   string               `json:"description,omitempty" gorm:"size:255"`
	CheckoutRef   string               `json:"checkout_ref,omitempty" gorm:"size:255;index"`
	TransactionID string               `json:"transaction_id,omitempty" gorm:"size:255;index"`
	FailureReason string               `json:"failure_reason,omitempty" gorm:"size:255"`
	RawBody       string               `json:"-" gorm:"type:text"`
	SentAt        *time.Time           `json:"sent_at,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty" gorm:"index"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`

	Booking  *Booking  `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

func (PaymentRequest) TableName() string { return "payment_requests" }

// ExpiredBy reports whether the request's expiry clock has run out at the
// given instant. Terminal rows never re-expire.
func (p *PaymentRequest) ExpiredBy(now time.Time) bool {
	if p.Status.Terminal() || p.ExpiresAt == nil {
		return false
	}
	return !now.Before(*p.ExpiresAt)
}
