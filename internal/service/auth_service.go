package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
	"github.com/queendomzy/swiftstay-api/pkg/events"
	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	users  postgres.UsersRepo
	signer *auth.Signer
	bus    events.Publisher
}

func NewAuthService(users postgres.UsersRepo, signer *auth.Signer, bus events.Publisher) AuthService {
	return &authService{users: users, signer: signer, bus: bus}
}

// dummyHash is compared against when login hits an unknown email, so both
// failure paths cost roughly one argon2id verification.
var dummyHash, _ = argon2id.CreateHash("swiftstay-dummy", argon2id.DefaultParams)

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	// The unique index is the source of truth for duplicates; Create maps
	// the violation to ErrDuplicateUser regardless of role or name.
	user, err := s.users.Create(ctx, req.Email, hash, req.FullName, req.Role)
	if err != nil {
		if err == domain.ErrDuplicateUser {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.signer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	if err := s.bus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish user registered event", "error", err, "user_id", user.ID)
	}

	return user.Sanitized(), token, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		argon2id.ComparePasswordAndHash(req.Password, dummyHash)
		return nil, "", domain.ErrInvalidCredentials
	}

	ok, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, "", domain.ErrInvalidCredentials
	}

	// Claims carry the user's current role and name, not whatever they
	// were at registration.
	token, err := s.signer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user.Sanitized(), token, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user.Sanitized(), nil
}
