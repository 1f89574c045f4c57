package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queendomzy/swiftstay-api/internal/domain"
)

type PropertiesRepo interface {
	Create(ctx context.Context, p *domain.Property) (*domain.Property, error)
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	Update(ctx context.Context, p *domain.Property) (*domain.Property, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error)
}

type PropertiesRepoImpl struct{ pool *pgxpool.Pool }

func NewPropertiesRepo(pool *pgxpool.Pool) *PropertiesRepoImpl {
	return &PropertiesRepoImpl{pool: pool}
}

const propertyCols = `id, owner_id, title, description, location, price,
guests, room_type, amenities, rating, created_at, updated_at`

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Location, &p.Price,
		&p.Guests, &p.RoomType, &p.Amenities, &p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertiesRepoImpl) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	const q = `
INSERT INTO properties (owner_id, title, description, location, price, guests, room_type, amenities)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING ` + propertyCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanProperty(r.pool.QueryRow(ctx, q,
		p.OwnerID, p.Title, p.Description, p.Location, p.Price, p.Guests, p.RoomType, p.Amenities,
	))
}

func (r *PropertiesRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	const q = `SELECT ` + propertyCols + ` FROM properties WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	p, err := scanProperty(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PropertiesRepoImpl) Update(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	const q = `
UPDATE properties
SET title=$2, description=$3, location=$4, price=$5, guests=$6, room_type=$7, amenities=$8, updated_at=now()
WHERE id=$1
RETURNING ` + propertyCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	out, err := scanProperty(r.pool.QueryRow(ctx, q,
		p.ID, p.Title, p.Description, p.Location, p.Price, p.Guests, p.RoomType, p.Amenities,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return out, err
}

func (r *PropertiesRepoImpl) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM properties WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// Search applies the listing page's filters. Sort falls back to newest
// first ("relevance" without a text query has nothing to rank on).
func (r *PropertiesRepoImpl) Search(ctx context.Context, f domain.PropertyFilter) ([]domain.Property, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Query != "" {
		p := arg("%" + strings.ToLower(f.Query) + "%")
		where = append(where, fmt.Sprintf("(lower(title) LIKE %s OR lower(location) LIKE %s)", p, p))
	}
	if f.Location != "" {
		where = append(where, fmt.Sprintf("lower(location) = %s", arg(strings.ToLower(f.Location))))
	}
	if f.PriceMin > 0 {
		where = append(where, fmt.Sprintf("price >= %s", arg(f.PriceMin)))
	}
	if f.PriceMax > 0 {
		where = append(where, fmt.Sprintf("price <= %s", arg(f.PriceMax)))
	}
	if f.Guests > 0 {
		where = append(where, fmt.Sprintf("guests >= %s", arg(f.Guests)))
	}
	if f.RoomType != "" {
		where = append(where, fmt.Sprintf("room_type = %s", arg(f.RoomType)))
	}
	if len(f.Amenities) > 0 {
		where = append(where, fmt.Sprintf("amenities @> %s", arg(f.Amenities)))
	}

	q := `SELECT ` + propertyCols + ` FROM properties`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	switch f.Sort {
	case "price_asc":
		q += " ORDER BY price ASC"
	case "price_desc":
		q += " ORDER BY price DESC"
	case "rating":
		q += " ORDER BY rating DESC"
	default:
		q += " ORDER BY created_at DESC"
	}
	q += fmt.Sprintf(" LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Offset))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ps := make([]domain.Property, 0, f.Limit)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

var _ PropertiesRepo = (*PropertiesRepoImpl)(nil)
