package service

import (
	"context"
	"fmt"
	"time"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/platform/mailer"
	"github.com/queendomzy/swiftstay-api/internal/platform/payments"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
	"github.com/queendomzy/swiftstay-api/pkg/events"
	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

type PaymentService interface {
	Record(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.Payment, error)
	Confirm(ctx context.Context, paymentID int64) (*domain.Payment, error)
	List(ctx context.Context, limit, offset int) ([]domain.Payment, error)
}

type paymentService struct {
	payments postgres.PaymentsRepo
	bookings postgres.BookingsRepo
	channel  payments.Channel
	mail     mailer.Service
	bus      events.Publisher
}

func NewPaymentService(
	paymentsRepo postgres.PaymentsRepo,
	bookings postgres.BookingsRepo,
	channel payments.Channel,
	mail mailer.Service,
	bus events.Publisher,
) PaymentService {
	return &paymentService{
		payments: paymentsRepo,
		bookings: bookings,
		channel:  channel,
		mail:     mail,
		bus:      bus,
	}
}

// Record persists a payment attempt. The payment channel decides the
// status: a payment is only ever written as completed when the channel
// confirmed the charge, and that write confirms the booking in the same
// transaction.
func (s *paymentService) Record(ctx context.Context, req *domain.RecordPaymentRequest) (*domain.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, req.BookingID)
	}

	outcome, err := s.channel.Confirm(ctx, payments.Charge{
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		// An unreachable provider is not a verdict: the charge may have
		// gone through. The payment stays pending and the booking stays
		// open for the explicit confirmation path or a retry.
		logger.WarnContext(ctx, "Payment channel confirmation failed", "error", err, "booking_id", req.BookingID, "method", req.Method)
		outcome = payments.OutcomePending
	}

	in := &domain.Payment{
		BookingID: req.BookingID,
		Method:    req.Method,
		Amount:    req.Amount,
		Reference: req.Reference,
	}

	var payment *domain.Payment
	switch outcome {
	case payments.OutcomeConfirmed:
		payment, err = s.payments.CreateCompleted(ctx, in)
	case payments.OutcomeFailed:
		payment, err = s.payments.CreateFailed(ctx, in)
	default:
		payment, err = s.payments.CreatePending(ctx, in)
	}
	if err != nil {
		if err == domain.ErrBookingNotPending {
			return nil, err
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.announce(ctx, payment)
	if payment.Status == domain.PaymentCompleted && booking.User != nil {
		if err := s.mail.SendBookingConfirmation(booking.User.Email, booking.User.FullName, booking.ID, payment.Amount); err != nil {
			logger.ErrorContext(ctx, "Failed to send booking confirmation email", "error", err, "booking_id", booking.ID)
		}
	}
	return payment, nil
}

// Confirm is the explicit confirmation step for channels that settle
// asynchronously: it completes a pending payment and confirms its booking
// atomically.
func (s *paymentService) Confirm(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	payment, err := s.payments.Complete(ctx, paymentID)
	if err != nil {
		if err == domain.ErrNotFound || err == domain.ErrBookingNotPending {
			return nil, err
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	s.announce(ctx, payment)
	if booking, err := s.bookings.GetByID(ctx, payment.BookingID); err == nil && booking != nil && booking.User != nil {
		if err := s.mail.SendBookingConfirmation(booking.User.Email, booking.User.FullName, booking.ID, payment.Amount); err != nil {
			logger.ErrorContext(ctx, "Failed to send booking confirmation email", "error", err, "booking_id", booking.ID)
		}
	}
	return payment, nil
}

func (s *paymentService) List(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	return s.payments.List(ctx, limit, offset)
}

func (s *paymentService) announce(ctx context.Context, p *domain.Payment) {
	event := events.PaymentEvent{
		PaymentID: p.ID,
		BookingID: p.BookingID,
		Method:    p.Method,
		Amount:    p.Amount,
		Status:    string(p.Status),
	}
	subject := events.PaymentRecorded
	switch p.Status {
	case domain.PaymentCompleted:
		subject = events.PaymentCaptured
	case domain.PaymentFailed:
		subject = events.PaymentFailed
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish payment event", "error", err, "payment_id", p.ID)
	}
	if p.Status == domain.PaymentCompleted {
		if err := s.bus.Publish(ctx, events.BookingConfirmed, events.BookingConfirmedEvent{
			BookingID:   p.BookingID,
			PaymentID:   p.ID,
			ConfirmedAt: time.Now(),
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to publish booking confirmed event", "error", err, "booking_id", p.BookingID)
		}
	}
}
