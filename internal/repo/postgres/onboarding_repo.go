package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queendomzy/swiftstay-api/internal/domain"
)

type OnboardingRepo interface {
	Create(ctx context.Context, a *domain.OnboardingApplication) (*domain.OnboardingApplication, error)
}

type OnboardingRepoImpl struct{ pool *pgxpool.Pool }

func NewOnboardingRepo(pool *pgxpool.Pool) *OnboardingRepoImpl {
	return &OnboardingRepoImpl{pool: pool}
}

func (r *OnboardingRepoImpl) Create(ctx context.Context, in *domain.OnboardingApplication) (*domain.OnboardingApplication, error) {
	const q = `
INSERT INTO onboarding_applications (name, email, preferences, website)
VALUES ($1,$2,$3,$4)
RETURNING id, name, email, preferences, website, created_at`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var a domain.OnboardingApplication
	err := r.pool.QueryRow(ctx, q, in.Name, in.Email, in.Preferences, in.Website).Scan(
		&a.ID, &a.Name, &a.Email, &a.Preferences, &a.Website, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

var _ OnboardingRepo = (*OnboardingRepoImpl)(nil)
