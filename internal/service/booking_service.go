package service

import (
	"context"
	"fmt"
	"time"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
	"github.com/queendomzy/swiftstay-api/pkg/events"
	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

type BookingService interface {
	Create(ctx context.Context, req *domain.CreateBookingRequest, idempotencyKey string) (*domain.Booking, error)
	Get(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error)
	Cancel(ctx context.Context, id, userID int64) error
}

type bookingService struct {
	bookings    postgres.BookingsRepo
	properties  postgres.PropertiesRepo
	idempotency postgres.IdempotencyRepo
	bus         events.Publisher
}

func NewBookingService(
	bookings postgres.BookingsRepo,
	properties postgres.PropertiesRepo,
	idempotency postgres.IdempotencyRepo,
	bus events.Publisher,
) BookingService {
	return &bookingService{
		bookings:    bookings,
		properties:  properties,
		idempotency: idempotency,
		bus:         bus,
	}
}

func (s *bookingService) Create(ctx context.Context, req *domain.CreateBookingRequest, idempotencyKey string) (*domain.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The key is scoped to the caller: two users sending the same header
	// value must never see each other's bookings on replay.
	var scopedKey string
	if idempotencyKey != "" {
		scopedKey = fmt.Sprintf("%d:%s", req.UserID, idempotencyKey)
		existingID, err := s.idempotency.CheckOrCreate(ctx, scopedKey, 0)
		if err != nil {
			return nil, fmt.Errorf("idempotency check: %w", err)
		}
		if existingID > 0 {
			return s.bookings.GetByID(ctx, existingID)
		}
	}

	// The property must resolve before anything is written; its price at
	// this instant becomes the booking's snapshot.
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("find property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("%w: property %d", domain.ErrNotFound, req.PropertyID)
	}

	// TODO: total should probably be price * nights(check_in, check_out).
	// The web and mobile clients currently display the stored nightly rate
	// as the charge total, so the flat rate stays until they change.
	total := property.Price
	booking, err := s.bookings.Create(ctx, &domain.Booking{
		UserID:     req.UserID,
		PropertyID: req.PropertyID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		TotalPrice: total,
		Commission: domain.CommissionOn(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if scopedKey != "" {
		if _, err := s.idempotency.CheckOrCreate(ctx, scopedKey, booking.ID); err != nil {
			logger.ErrorContext(ctx, "Failed to store idempotency record", "error", err, "booking_id", booking.ID)
		}
	}

	if err := s.bus.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		PropertyID: booking.PropertyID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		TotalPrice: booking.TotalPrice,
		Commission: booking.Commission,
		CreatedAt:  booking.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	if status != nil {
		return s.bookings.ListByStatus(ctx, *status, limit, offset)
	}
	return s.bookings.List(ctx, limit, offset)
}

func (s *bookingService) Cancel(ctx context.Context, id, userID int64) error {
	ok, err := s.bookings.Cancel(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	if err := s.bus.Publish(ctx, events.BookingCancelled, events.BookingCancelledEvent{
		BookingID:   id,
		UserID:      userID,
		CancelledAt: time.Now(),
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking cancelled event", "error", err, "booking_id", id)
	}
	return nil
}
