package domain

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

// Payment records one attempt against a booking. Rows are immutable except
// for the pending -> completed flip done by the explicit confirmation path,
// which also confirms the booking in the same transaction.
type Payment struct {
	ID        int64         `json:"id"`
	BookingID int64         `json:"booking_id"`
	Method    string        `json:"method"`
	Amount    int64         `json:"amount"`
	Reference string        `json:"reference,omitempty"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`

	Booking *Booking `json:"booking,omitempty"`
}

type RecordPaymentRequest struct {
	BookingID int64  `json:"bookingId" validate:"required,gt=0"`
	Method    string `json:"method" validate:"required"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Reference string `json:"reference"`
}

func (r *RecordPaymentRequest) Validate() error {
	if r.BookingID <= 0 {
		return fmt.Errorf("%w: bookingId is required", ErrValidation)
	}
	if r.Method == "" {
		return fmt.Errorf("%w: method is required", ErrValidation)
	}
	if r.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return nil
}
