package postgres

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IdempotencyRepo lets booking creation be retried safely: the same
// Idempotency-Key always maps back to the booking it first created.
type IdempotencyRepo interface {
	// CheckOrCreate returns the booking already recorded for key, or 0 when
	// the key is new. Passing bookingID > 0 records the mapping.
	CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct{ pool *pgxpool.Pool }

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{pool: pool}
}

func (r *IdempotencyRepoImpl) CheckOrCreate(ctx context.Context, key string, bookingID int64) (int64, error) {
	// Keys are caller-supplied; hash them so arbitrary input never lands in
	// the table verbatim and every row has the same width.
	keyHash := fmt.Sprintf("%x", sha256.Sum256([]byte(key)))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var existing int64
	err := r.pool.QueryRow(ctx,
		`SELECT booking_id FROM booking_idempotency WHERE key_hash=$1`, keyHash,
	).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if bookingID > 0 {
		_, err = r.pool.Exec(ctx, `
INSERT INTO booking_idempotency (key_hash, booking_id, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key_hash) DO NOTHING`,
			keyHash, bookingID, time.Now().Add(24*time.Hour))
		if err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, `DELETE FROM booking_idempotency WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)
