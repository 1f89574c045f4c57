package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingFailed    BookingStatus = "failed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingFailed, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// Terminal reports whether the status admits no further transitions.
// The only legal moves are pending -> confirmed, pending -> failed and
// pending -> cancelled.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingFailed || s == BookingCancelled
}

// commissionPercent is the platform's cut of a booking's total price,
// locked in when the booking is created.
const commissionPercent = 8

// CommissionOn computes the platform commission on a total expressed in
// minor currency units, rounding half up. Integer math only so the result
// is deterministic for any total.
func CommissionOn(total int64) int64 {
	return (total*commissionPercent + 50) / 100
}

// Booking snapshots its financial fields at creation time: TotalPrice and
// Commission are computed once from the property's price at that instant
// and never recomputed, even if the listing is repriced later.
type Booking struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"user_id"`
	PropertyID int64         `json:"property_id"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	TotalPrice int64         `json:"total_price"`
	Commission int64         `json:"commission"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Resolved associations, populated on reads.
	User     *User     `json:"user,omitempty"`
	Property *Property `json:"property,omitempty"`
	Payments []Payment `json:"payments"`
}

type CreateBookingRequest struct {
	UserID     int64
	PropertyID int64
	CheckIn    time.Time
	CheckOut   time.Time
}

func (r *CreateBookingRequest) Validate() error {
	if r.UserID <= 0 || r.PropertyID <= 0 {
		return fmt.Errorf("%w: user and property are required", ErrValidation)
	}
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrValidation)
	}
	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check_out must be after check_in", ErrValidation)
	}
	return nil
}
