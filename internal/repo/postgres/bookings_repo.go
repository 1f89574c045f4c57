package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queendomzy/swiftstay-api/internal/domain"
)

type BookingsRepo interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	Cancel(ctx context.Context, id, userID int64) (bool, error)
}

type BookingsRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingsRepo(pool *pgxpool.Pool) *BookingsRepoImpl { return &BookingsRepoImpl{pool: pool} }

// bookingCols joins the user and property rows so reads come back with
// associations resolved in one round trip; payments are attached by a
// second batched query.
const bookingCols = `
b.id, b.user_id, b.property_id, b.check_in, b.check_out,
b.total_price, b.commission, b.status, b.created_at, b.updated_at,
u.id, u.email, u.full_name, u.role, u.created_at, u.updated_at,
p.id, p.owner_id, p.title, p.description, p.location, p.price,
p.guests, p.room_type, p.amenities, p.rating, p.created_at, p.updated_at`

const bookingFrom = ` FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN properties p ON p.id = b.property_id`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b domain.Booking
		u domain.User
		p domain.Property
	)
	err := row.Scan(
		&b.ID, &b.UserID, &b.PropertyID, &b.CheckIn, &b.CheckOut,
		&b.TotalPrice, &b.Commission, &b.Status, &b.CreatedAt, &b.UpdatedAt,
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.CreatedAt, &u.UpdatedAt,
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Location, &p.Price,
		&p.Guests, &p.RoomType, &p.Amenities, &p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.User = &u
	b.Property = &p
	b.Payments = []domain.Payment{}
	return &b, nil
}

func (r *BookingsRepoImpl) Create(ctx context.Context, in *domain.Booking) (*domain.Booking, error) {
	const q = `
WITH ins AS (
  INSERT INTO bookings (user_id, property_id, check_in, check_out, total_price, commission, status)
  VALUES ($1,$2,$3,$4,$5,$6,'pending')
  RETURNING *
)
SELECT ` + bookingCols + `
FROM ins b
JOIN users u ON u.id = b.user_id
JOIN properties p ON p.id = b.property_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q,
		in.UserID, in.PropertyID, in.CheckIn, in.CheckOut, in.TotalPrice, in.Commission,
	))
}

func (r *BookingsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + bookingFrom + ` WHERE b.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	b, err := scanBooking(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, []*domain.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingsRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + bookingFrom + ` ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, q, clampLimit(limit), clampOffset(offset))
}

func (r *BookingsRepoImpl) ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + bookingFrom + ` WHERE b.status=$3 ORDER BY b.created_at DESC LIMIT $1 OFFSET $2`
	return r.list(ctx, q, clampLimit(limit), clampOffset(offset), status)
}

func (r *BookingsRepoImpl) list(ctx context.Context, q string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*domain.Booking, len(bs))
	for i := range bs {
		refs[i] = &bs[i]
	}
	if err := r.attachPayments(ctx, refs); err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *BookingsRepoImpl) attachPayments(ctx context.Context, bs []*domain.Booking) error {
	if len(bs) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(bs))
	byID := make(map[int64]*domain.Booking, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	const q = `
SELECT id, booking_id, method, amount, reference, status, created_at
FROM payments WHERE booking_id = ANY($1) ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pay domain.Payment
		if err := rows.Scan(&pay.ID, &pay.BookingID, &pay.Method, &pay.Amount, &pay.Reference, &pay.Status, &pay.CreatedAt); err != nil {
			return err
		}
		if b, ok := byID[pay.BookingID]; ok {
			b.Payments = append(b.Payments, pay)
		}
	}
	return rows.Err()
}

// Cancel moves a pending booking owned by userID to cancelled. Confirmed
// and failed bookings are terminal and stay put.
func (r *BookingsRepoImpl) Cancel(ctx context.Context, id, userID int64) (bool, error) {
	const q = `UPDATE bookings SET status='cancelled', updated_at=now()
WHERE id=$1 AND user_id=$2 AND status='pending'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ BookingsRepo = (*BookingsRepoImpl)(nil)
