package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/platform/payments"
)

// ---------- Mocks ----------

// fakePaymentsRepo mirrors the transactional contract of the real repo:
// completed/failed writes only land when the booking can leave pending,
// otherwise nothing is written at all.
type fakePaymentsRepo struct {
	bookings *stubBookingsRepo
	nextID   int64
	rows     map[int64]*domain.Payment
}

func newFakePaymentsRepo(bookings *stubBookingsRepo) *fakePaymentsRepo {
	return &fakePaymentsRepo{bookings: bookings, nextID: 1, rows: make(map[int64]*domain.Payment)}
}

func (r *fakePaymentsRepo) insert(p *domain.Payment, status domain.PaymentStatus) *domain.Payment {
	stored := *p
	stored.ID = r.nextID
	stored.Status = status
	stored.CreatedAt = time.Now()
	r.nextID++
	r.rows[stored.ID] = &stored
	clone := stored
	return &clone
}

func (r *fakePaymentsRepo) CreatePending(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	return r.insert(p, domain.PaymentPending), nil
}

func (r *fakePaymentsRepo) CreateCompleted(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
	return r.createWithMove(p, domain.PaymentCompleted, domain.BookingConfirmed)
}

func (r *fakePaymentsRepo) CreateFailed(_ context.Context, p *domain.Payment) (*domain.Payment, error) {
	return r.createWithMove(p, domain.PaymentFailed, domain.BookingFailed)
}

func (r *fakePaymentsRepo) createWithMove(p *domain.Payment, ps domain.PaymentStatus, bs domain.BookingStatus) (*domain.Payment, error) {
	booking, ok := r.bookings.bookings[p.BookingID]
	if !ok || booking.Status != domain.BookingPending {
		return nil, domain.ErrBookingNotPending
	}
	booking.Status = bs
	return r.insert(p, ps), nil
}

func (r *fakePaymentsRepo) Complete(_ context.Context, paymentID int64) (*domain.Payment, error) {
	p, ok := r.rows[paymentID]
	if !ok || p.Status != domain.PaymentPending {
		return nil, domain.ErrNotFound
	}
	booking, ok := r.bookings.bookings[p.BookingID]
	if !ok || booking.Status != domain.BookingPending {
		return nil, domain.ErrBookingNotPending
	}
	p.Status = domain.PaymentCompleted
	booking.Status = domain.BookingConfirmed
	clone := *p
	return &clone, nil
}

func (r *fakePaymentsRepo) List(_ context.Context, _, _ int) ([]domain.Payment, error) {
	out := make([]domain.Payment, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, *p)
	}
	return out, nil
}

type fixedChannel struct {
	outcome payments.Outcome
	err     error
}

func (c fixedChannel) Confirm(context.Context, payments.Charge) (payments.Outcome, error) {
	return c.outcome, c.err
}

type recordingMailer struct {
	confirmations []int64
}

func (m *recordingMailer) Send(_, _, _, _, _ string) (string, error) { return "stub", nil }

func (m *recordingMailer) SendBookingConfirmation(_, _ string, bookingID, _ int64) error {
	m.confirmations = append(m.confirmations, bookingID)
	return nil
}

// ---------- Tests ----------

func paymentFixtures(ch payments.Channel) (*stubBookingsRepo, *fakePaymentsRepo, *recordingMailer, *capturingBus, PaymentService, *domain.Booking) {
	bookings := newStubBookingsRepo()
	booking := &domain.Booking{
		ID:         1,
		UserID:     3,
		PropertyID: 7,
		TotalPrice: 25000,
		Commission: 2000,
		Status:     domain.BookingPending,
		User:       &domain.User{ID: 3, Email: "ada@example.com", FullName: "Ada Obi"},
	}
	bookings.bookings[1] = booking
	bookings.nextID = 2

	paymentsRepo := newFakePaymentsRepo(bookings)
	mail := &recordingMailer{}
	bus := &capturingBus{}
	svc := NewPaymentService(paymentsRepo, bookings, ch, mail, bus)
	return bookings, paymentsRepo, mail, bus, svc, booking
}

func TestRecordPaymentConfirmed(t *testing.T) {
	bookings, _, mail, bus, svc, _ := paymentFixtures(fixedChannel{outcome: payments.OutcomeConfirmed})

	payment, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "card", Amount: 25000, Reference: "pi_123",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if payment.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, want completed", payment.Status)
	}
	if bookings.bookings[1].Status != domain.BookingConfirmed {
		t.Errorf("booking = %s, want confirmed", bookings.bookings[1].Status)
	}
	if len(mail.confirmations) != 1 || mail.confirmations[0] != 1 {
		t.Errorf("expected one confirmation mail for booking 1, got %v", mail.confirmations)
	}

	want := map[string]bool{"payment.captured": false, "booking.confirmed": false}
	for _, s := range bus.subjects {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for subject, seen := range want {
		if !seen {
			t.Errorf("missing %s event, published %v", subject, bus.subjects)
		}
	}
}

func TestRecordPaymentOffline(t *testing.T) {
	bookings, _, mail, bus, svc, _ := paymentFixtures(payments.Router{Offline: payments.Offline{}})

	payment, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "transfer", Amount: 25000,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if payment.Status != domain.PaymentPending {
		t.Errorf("status = %s, want pending", payment.Status)
	}
	// The booking only moves once the payment is confirmed.
	if bookings.bookings[1].Status != domain.BookingPending {
		t.Errorf("booking = %s, want pending", bookings.bookings[1].Status)
	}
	if len(mail.confirmations) != 0 {
		t.Error("no mail until the payment completes")
	}
	if len(bus.subjects) != 1 || bus.subjects[0] != "payment.recorded" {
		t.Errorf("expected payment.recorded only, got %v", bus.subjects)
	}
}

func TestRecordPaymentChannelOutage(t *testing.T) {
	bookings, repo, mail, bus, svc, _ := paymentFixtures(fixedChannel{err: errors.New("stripe: connection reset")})

	payment, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "card", Amount: 25000, Reference: "pi_123",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	// An outage is not a decline: the charge may have succeeded, so the
	// payment stays pending and the booking stays open.
	if payment.Status != domain.PaymentPending {
		t.Errorf("status = %s, want pending", payment.Status)
	}
	if bookings.bookings[1].Status != domain.BookingPending {
		t.Errorf("booking = %s, want pending", bookings.bookings[1].Status)
	}
	if len(mail.confirmations) != 0 {
		t.Error("no mail for an unconfirmed payment")
	}

	// Once the provider is back, a retry with a confirmed charge still
	// lands: the booking was never moved to a terminal state.
	retrySvc := NewPaymentService(repo, bookings, fixedChannel{outcome: payments.OutcomeConfirmed}, mail, bus)
	retried, err := retrySvc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "card", Amount: 25000, Reference: "pi_123",
	})
	if err != nil {
		t.Fatalf("retry after outage: %v", err)
	}
	if retried.Status != domain.PaymentCompleted {
		t.Errorf("retry status = %s, want completed", retried.Status)
	}
	if bookings.bookings[1].Status != domain.BookingConfirmed {
		t.Errorf("booking = %s, want confirmed", bookings.bookings[1].Status)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	_, repo, _, _, svc, _ := paymentFixtures(fixedChannel{outcome: payments.OutcomeConfirmed})

	cases := []domain.RecordPaymentRequest{
		{Method: "card", Amount: 100},
		{BookingID: 1, Amount: 100},
		{BookingID: 1, Method: "card"},
		{BookingID: 1, Method: "card", Amount: -5},
	}
	for i, req := range cases {
		if _, err := svc.Record(context.Background(), &req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: got %v, want ErrValidation", i, err)
		}
	}
	if len(repo.rows) != 0 {
		t.Errorf("invalid requests must not write rows, got %d", len(repo.rows))
	}
}

func TestRecordPaymentUnknownBooking(t *testing.T) {
	_, repo, _, _, svc, _ := paymentFixtures(fixedChannel{outcome: payments.OutcomeConfirmed})

	_, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 42, Method: "card", Amount: 100,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if len(repo.rows) != 0 {
		t.Error("no payment row should exist for an unknown booking")
	}
}

func TestRecordPaymentBookingAlreadySettled(t *testing.T) {
	bookings, repo, mail, _, svc, _ := paymentFixtures(fixedChannel{outcome: payments.OutcomeConfirmed})
	bookings.bookings[1].Status = domain.BookingConfirmed

	_, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "card", Amount: 25000, Reference: "pi_dup",
	})
	if !errors.Is(err, domain.ErrBookingNotPending) {
		t.Fatalf("got %v, want ErrBookingNotPending", err)
	}
	// The rejected attempt leaves no trace: no payment row, no mail.
	if len(repo.rows) != 0 {
		t.Errorf("expected zero payment rows, got %d", len(repo.rows))
	}
	if len(mail.confirmations) != 0 {
		t.Error("no mail for a rejected payment")
	}
}

func TestConfirmPendingPayment(t *testing.T) {
	bookings, _, mail, bus, svc, _ := paymentFixtures(payments.Router{Offline: payments.Offline{}})

	pending, err := svc.Record(context.Background(), &domain.RecordPaymentRequest{
		BookingID: 1, Method: "transfer", Amount: 25000,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	confirmed, err := svc.Confirm(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if confirmed.Status != domain.PaymentCompleted {
		t.Errorf("status = %s, want completed", confirmed.Status)
	}
	if bookings.bookings[1].Status != domain.BookingConfirmed {
		t.Errorf("booking = %s, want confirmed", bookings.bookings[1].Status)
	}
	if len(mail.confirmations) != 1 {
		t.Errorf("expected one confirmation mail, got %d", len(mail.confirmations))
	}
	last := bus.subjects[len(bus.subjects)-1]
	if last != "booking.confirmed" {
		t.Errorf("expected booking.confirmed last, got %v", bus.subjects)
	}

	// A second confirm finds nothing pending.
	if _, err := svc.Confirm(context.Background(), pending.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second confirm: got %v, want ErrNotFound", err)
	}
}

func TestConfirmUnknownPayment(t *testing.T) {
	_, _, _, _, svc, _ := paymentFixtures(payments.Router{Offline: payments.Offline{}})
	if _, err := svc.Confirm(context.Background(), 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
