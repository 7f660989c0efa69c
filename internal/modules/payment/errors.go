package payment

import (
	"errors"
	"fmt"

	"clinicbook/internal/domain"
)

var (
	ErrNotFound      = errors.New("payment request not found")
	ErrStateConflict = errors.New("payment request state conflict")
	ErrValidation    = errors.New("invalid payment input")
	ErrProvider      = errors.New("checkout provider failure")
)

// StateConflictError carries the terminal status so handlers can render the
// matching screen instead of a bare 409.
type StateConflictError struct {
	Status domain.PaymentRequestStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("payment request already %s", e.Status)
}

func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}
