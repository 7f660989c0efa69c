package booking

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("booking not found")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrPersistence     = errors.New("persistence failed")
)
