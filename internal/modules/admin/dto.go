package admin

import "clinicbook/internal/domain"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string            `json:"token"`
	Admin *domain.AdminUser `json:"admin"`
}

type CreateSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	SlotType  string `json:"slot_type" binding:"required,oneof=in-hour out-of-hour"`
}

type UpdateSlotRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

type ResendPaymentRequest struct {
	PaymentType string `json:"payment_type" binding:"omitempty,oneof=deposit full"`
}

type CancelPaymentRequest struct {
	// Silent suppresses the customer cancellation email.
	Silent bool `json:"silent"`
}
