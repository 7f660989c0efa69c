package domain

import "time"

type NotificationType string

const (
	NotificationBookingReceived         NotificationType = "booking_received"
	NotificationBookingConfirmed        NotificationType = "booking_confirmed"
	NotificationPaymentRequest          NotificationType = "payment_request"
	NotificationPaymentReceived         NotificationType = "payment_received"
	NotificationPaymentRequestCancelled NotificationType = "payment_request_cancelled"
)

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

// Notification records every dispatch attempt, successful or not. The rows
// double as the audit trail for the exactly-once confirmation guarantee.
type Notification struct {
	ID               int64              `json:"id" gorm:"primaryKey"`
	Type             NotificationType   `json:"type" gorm:"size:40;not null;index"`
	Channel          string             `json:"channel" gorm:"size:20;not null;default:'email'"`
	Recipient        string             `json:"recipient" gorm:"size:255;not null"`
	Subject          string             `json:"subject" gorm:"size:255"`
	Body             string             `json:"body,omitempty" gorm:"type:text"`
	BookingID        *int64             `json:"booking_id,omitempty" gorm:"index"`
	PaymentRequestID *int64             `json:"payment_request_id,omitempty" gorm:"index"`
	Status           NotificationStatus `json:"status" gorm:"size:10;not null"`
	Error            string             `json:"error,omitempty" gorm:"size:500"`
	CreatedAt        time.Time          `json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
