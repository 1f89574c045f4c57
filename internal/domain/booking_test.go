package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCommissionOn(t *testing.T) {
	cases := []struct {
		total int64
		want  int64
	}{
		{25000, 2000}, // 8% exactly
		{0, 0},
		{100, 8},
		{1037, 83},  // 82.96 rounds up
		{1031, 82},  // 82.48 rounds down
		{13, 1},     // 1.04 rounds down
		{7, 1},      // 0.56 rounds up
	}
	for _, c := range cases {
		if got := CommissionOn(c.total); got != c.want {
			t.Errorf("CommissionOn(%d) = %d, want %d", c.total, got, c.want)
		}
	}
}

func TestCommissionOnDeterministic(t *testing.T) {
	for i := 0; i < 100; i++ {
		if CommissionOn(99999) != CommissionOn(99999) {
			t.Fatal("commission must be deterministic")
		}
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := CreateBookingRequest{UserID: 3, PropertyID: 7, CheckIn: base, CheckOut: base.Add(2 * day)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	sameDay := valid
	sameDay.CheckOut = sameDay.CheckIn
	if err := sameDay.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("check_in == check_out: got %v, want ErrValidation", err)
	}

	reversed := valid
	reversed.CheckIn, reversed.CheckOut = reversed.CheckOut, reversed.CheckIn
	if err := reversed.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("check_in > check_out: got %v, want ErrValidation", err)
	}

	noProperty := valid
	noProperty.PropertyID = 0
	if err := noProperty.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("missing property: got %v, want ErrValidation", err)
	}

	zeroDates := CreateBookingRequest{UserID: 3, PropertyID: 7}
	if err := zeroDates.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("zero dates: got %v, want ErrValidation", err)
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	if BookingPending.Terminal() {
		t.Error("pending must not be terminal")
	}
	for _, st := range []BookingStatus{BookingConfirmed, BookingFailed, BookingCancelled} {
		if !st.Terminal() {
			t.Errorf("%s must be terminal", st)
		}
	}

	if _, ok := ParseBookingStatus("confirmed"); !ok {
		t.Error("confirmed should parse")
	}
	if _, ok := ParseBookingStatus("on_trip"); ok {
		t.Error("unknown status should not parse")
	}
}
