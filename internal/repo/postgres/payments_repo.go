package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queendomzy/swiftstay-api/internal/domain"
)

// PaymentsRepo persists payment attempts. The Completed/Failed variants
// also move the booking, and both writes ride one transaction: either the
// payment row and the booking status land together or neither does.
type PaymentsRepo interface {
	CreatePending(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	CreateCompleted(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	CreateFailed(ctx context.Context, p *domain.Payment) (*domain.Payment, error)
	Complete(ctx context.Context, paymentID int64) (*domain.Payment, error)
	List(ctx context.Context, limit, offset int) ([]domain.Payment, error)
}

// db is the slice of pgxpool.Pool the payment writes use, narrowed so the
// transactional path is testable against a mock.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PaymentsRepoImpl struct{ pool db }

func NewPaymentsRepo(pool *pgxpool.Pool) *PaymentsRepoImpl { return &PaymentsRepoImpl{pool: pool} }

const paymentCols = `id, booking_id, method, amount, reference, status, created_at`

const insertPayment = `
INSERT INTO payments (booking_id, method, amount, reference, status)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + paymentCols

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Method, &p.Amount, &p.Reference, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentsRepoImpl) CreatePending(ctx context.Context, in *domain.Payment) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPayment(r.pool.QueryRow(ctx, insertPayment,
		in.BookingID, in.Method, in.Amount, in.Reference, domain.PaymentPending,
	))
}

func (r *PaymentsRepoImpl) CreateCompleted(ctx context.Context, in *domain.Payment) (*domain.Payment, error) {
	return r.createWithBookingMove(ctx, in, domain.PaymentCompleted, domain.BookingConfirmed)
}

func (r *PaymentsRepoImpl) CreateFailed(ctx context.Context, in *domain.Payment) (*domain.Payment, error) {
	return r.createWithBookingMove(ctx, in, domain.PaymentFailed, domain.BookingFailed)
}

func (r *PaymentsRepoImpl) createWithBookingMove(ctx context.Context, in *domain.Payment, ps domain.PaymentStatus, bs domain.BookingStatus) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p, err := scanPayment(tx.QueryRow(ctx, insertPayment,
		in.BookingID, in.Method, in.Amount, in.Reference, ps,
	))
	if err != nil {
		return nil, err
	}

	if err := moveBooking(ctx, tx, in.BookingID, bs); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete flips a pending payment to completed and confirms its booking,
// atomically. This is the explicit confirmation path for channels that
// settle asynchronously.
func (r *PaymentsRepoImpl) Complete(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `UPDATE payments SET status='completed'
WHERE id=$1 AND status='pending'
RETURNING ` + paymentCols
	p, err := scanPayment(tx.QueryRow(ctx, q, paymentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := moveBooking(ctx, tx, p.BookingID, domain.BookingConfirmed); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// moveBooking only moves bookings out of pending; zero rows affected means
// the booking already reached a terminal state and the whole transaction
// is abandoned.
func moveBooking(ctx context.Context, tx pgx.Tx, bookingID int64, to domain.BookingStatus) error {
	const q = `UPDATE bookings SET status=$2, updated_at=now()
WHERE id=$1 AND status='pending'`
	ct, err := tx.Exec(ctx, q, bookingID, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrBookingNotPending
	}
	return nil
}

func (r *PaymentsRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	const q = `
SELECT p.id, p.booking_id, p.method, p.amount, p.reference, p.status, p.created_at,
       b.id, b.user_id, b.property_id, b.check_in, b.check_out,
       b.total_price, b.commission, b.status, b.created_at, b.updated_at
FROM payments p
JOIN bookings b ON b.id = p.booking_id
ORDER BY p.created_at DESC
LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, clampLimit(limit), clampOffset(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.Payment
	for rows.Next() {
		var (
			p domain.Payment
			b domain.Booking
		)
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.Method, &p.Amount, &p.Reference, &p.Status, &p.CreatedAt,
			&b.ID, &b.UserID, &b.PropertyID, &b.CheckIn, &b.CheckOut,
			&b.TotalPrice, &b.Commission, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		p.Booking = &b
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

var _ PaymentsRepo = (*PaymentsRepoImpl)(nil)
