package booking

import "clinicbook/internal/domain"

// CreateBookingRequest is the public booking form. Service carries the
// tier-tagged selection label ("Deep Tissue Massage - In Hour (€50)"),
// Schedule the selected window as "2025-03-10T09:00-17:00" (the availability
// key with the pipe swapped for a T). Amount is an optional price the caller
// already shows; it is only trusted as the last resort of the pricing chain.
type CreateBookingRequest struct {
	Service   string  `json:"service" binding:"required,max=255"`
	Schedule  string  `json:"schedule" binding:"required,max=64"`
	FirstName string  `json:"first_name" binding:"required,max=100"`
	LastName  string  `json:"last_name" binding:"required,max=100"`
	Email     string  `json:"email" binding:"required,email,max=255"`
	Phone     string  `json:"phone" binding:"omitempty,max=50"`
	Notes     string  `json:"notes" binding:"omitempty,max=2000"`
	Amount    float64 `json:"amount" binding:"omitempty,gte=0"`
}

// CreateBookingResult is what a successful submission returns. PaymentRequest
// and PaymentURL are present only when the resolved price is chargeable.
// Deduped marks an idempotent replay that returned the original booking.
type CreateBookingResult struct {
	Booking        *domain.Booking        `json:"booking"`
	Customer       *domain.Customer       `json:"customer"`
	PaymentRequest *domain.PaymentRequest `json:"payment_request,omitempty"`
	PaymentURL     string                 `json:"payment_url,omitempty"`
	Deduped        bool                   `json:"deduped,omitempty"`
}
