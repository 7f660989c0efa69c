package payment

import (
	"time"

	"clinicbook/internal/domain"
	"clinicbook/internal/modules/pricing"
)

// Screen tells the payment page which state to render. It is derived from
// the request status so the frontend never re-implements the lifecycle.
const (
	ScreenChoose    = "choose"
	ScreenPaid      = "paid"
	ScreenCancelled = "cancelled"
	ScreenExpired   = "expired"
)

type CheckoutRequest struct {
	PaymentType string `json:"payment_type" binding:"required,oneof=deposit full"`
}

type ResendRequest struct {
	PaymentType string `json:"payment_type" binding:"omitempty,oneof=deposit full"`
}

// AmountOptions are the two amounts a customer may settle a request with.
type AmountOptions struct {
	Deposit float64 `json:"deposit"`
	Full    float64 `json:"full"`
}

// ComputeOptions derives the deposit/full pair from the resolved price.
// The deposit is 20% of the full amount, rounded half-up to cents.
func ComputeOptions(fullAmount float64) AmountOptions {
	return AmountOptions{
		Deposit: pricing.Round2(fullAmount * 0.20),
		Full:    pricing.Round2(fullAmount),
	}
}

type BookingSummary struct {
	Reference   string               `json:"reference"`
	ServiceName string               `json:"service_name"`
	BookingDate string               `json:"booking_date"`
	StartTime   string               `json:"start_time,omitempty"`
	Status      domain.BookingStatus `json:"status"`
}

type RequestView struct {
	Reference   string                      `json:"reference"`
	Screen      string                      `json:"screen"`
	Status      domain.PaymentRequestStatus `json:"status"`
	Amount      float64                     `json:"amount"`
	FullAmount  float64                     `json:"full_amount"`
	PaymentType domain.PaymentType          `json:"payment_type"`
	Currency    string                      `json:"currency"`
	Options     AmountOptions               `json:"options"`
	Description string                      `json:"description,omitempty"`
	PaidAt      *time.Time                  `json:"paid_at,omitempty"`
	ExpiresAt   *time.Time                  `json:"expires_at,omitempty"`
	Booking     *BookingSummary             `json:"booking,omitempty"`
}

// CheckoutRedirect is returned when a checkout session has been opened and
// the customer should be forwarded to the provider's hosted page.
type CheckoutRedirect struct {
	URL         string             `json:"url"`
	CheckoutRef string             `json:"checkout_ref"`
	Amount      float64            `json:"amount"`
	PaymentType domain.PaymentType `json:"payment_type"`
}

func screenFor(status domain.PaymentRequestStatus) string {
	switch status {
	case domain.PaymentRequestPaid:
		return ScreenPaid
	case domain.PaymentRequestCancelled:
		return ScreenCancelled
	case domain.PaymentRequestExpired:
		return ScreenExpired
	default:
		return ScreenChoose
	}
}

func newRequestView(pr *domain.PaymentRequest) *RequestView {
	view := &RequestView{
		Reference:   pr.Reference,
		Screen:      screenFor(pr.Status),
		Status:      pr.Status,
		Amount:      pr.Amount,
		FullAmount:  pr.FullAmount,
		PaymentType: pr.PaymentType,
		Currency:    pr.Currency,
		Options:     ComputeOptions(pr.FullAmount),
		Description: pr.Description,
		PaidAt:      pr.PaidAt,
		ExpiresAt:   pr.ExpiresAt,
	}
	if pr.Booking != nil {
		view.Booking = &BookingSummary{
			Reference:   pr.Booking.Reference,
			ServiceName: pr.Booking.ServiceName,
			BookingDate: pr.Booking.BookingDate,
			StartTime:   pr.Booking.StartTime,
			Status:      pr.Booking.Status,
		}
	}
	return view
}
