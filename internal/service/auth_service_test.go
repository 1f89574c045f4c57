package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
)

// ---------- Mocks ----------

type stubUsersRepo struct {
	nextID int64
	byMail map[string]*domain.User
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{nextID: 1, byMail: make(map[string]*domain.User)}
}

func (r *stubUsersRepo) Create(_ context.Context, email, hash, fullName, role string) (*domain.User, error) {
	if _, exists := r.byMail[email]; exists {
		return nil, domain.ErrDuplicateUser
	}
	u := &domain.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.nextID++
	r.byMail[email] = u
	clone := *u
	return &clone, nil
}

func (r *stubUsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byMail[email]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *stubUsersRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byMail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

type capturingBus struct {
	subjects []string
}

func (b *capturingBus) Publish(_ context.Context, subject string, _ interface{}) error {
	b.subjects = append(b.subjects, subject)
	return nil
}

func (b *capturingBus) Close() error { return nil }

func testSigner(t *testing.T) *auth.Signer {
	t.Helper()
	s, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

// ---------- Tests ----------

func TestRegister_Success(t *testing.T) {
	repo := newStubUsersRepo()
	signer := testSigner(t)
	svc := NewAuthService(repo, signer, &capturingBus{})

	user, token, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FullName: "Ada Obi",
		Email:    "Ada@Example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("returned user must not contain the password hash")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if user.Role != domain.RoleGuest {
		t.Errorf("role should default to guest, got %q", user.Role)
	}

	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Sub != user.ID || claims.Email != user.Email {
		t.Errorf("token claims do not match user: %+v", claims)
	}

	// The stored hash is a real argon2id hash of the password.
	stored := repo.byMail["ada@example.com"]
	if stored.PasswordHash == "hunter2" || stored.PasswordHash == "" {
		t.Fatal("password was not hashed")
	}
	if ok, _ := argon2id.ComparePasswordAndHash("hunter2", stored.PasswordHash); !ok {
		t.Error("stored hash does not verify against the password")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(newStubUsersRepo(), testSigner(t), &capturingBus{})

	cases := []domain.RegisterRequest{
		{FullName: "", Email: "a@b.com", Password: "secret1"},
		{FullName: "Ada", Email: "not-an-email", Password: "secret1"},
		{FullName: "Ada", Email: "a@b.com", Password: "short"},
	}
	for i, req := range cases {
		if _, _, err := svc.Register(context.Background(), &req); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: got %v, want ErrValidation", i, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(newStubUsersRepo(), testSigner(t), &capturingBus{})

	first := domain.RegisterRequest{FullName: "Ada Obi", Email: "ada@example.com", Password: "hunter2", Role: domain.RoleGuest}
	if _, _, err := svc.Register(context.Background(), &first); err != nil {
		t.Fatalf("first register: %v", err)
	}

	// Different name, role and casing: still the same account.
	second := domain.RegisterRequest{FullName: "Someone Else", Email: "ADA@example.com", Password: "other-pass", Role: domain.RoleHost}
	if _, _, err := svc.Register(context.Background(), &second); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("got %v, want ErrDuplicateUser", err)
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	repo := newStubUsersRepo()
	svc := NewAuthService(repo, testSigner(t), &capturingBus{})

	if _, _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FullName: "Ada Obi", Email: "ada@example.com", Password: "hunter2",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, unknownErr := svc.Login(context.Background(), &domain.LoginRequest{Email: "nobody@example.com", Password: "hunter2"})
	_, _, wrongPassErr := svc.Login(context.Background(), &domain.LoginRequest{Email: "ada@example.com", Password: "wrong"})

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", unknownErr)
	}
	if !errors.Is(wrongPassErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", wrongPassErr)
	}
	// Identical error either way: nothing distinguishes which check failed.
	if unknownErr.Error() != wrongPassErr.Error() {
		t.Errorf("error messages differ: %q vs %q", unknownErr, wrongPassErr)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newStubUsersRepo()
	signer := testSigner(t)
	svc := NewAuthService(repo, signer, &capturingBus{})

	if _, _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		FullName: "Ada Obi", Email: "ada@example.com", Password: "hunter2", Role: domain.RoleHost,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "Ada@Example.com", Password: "hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("login response must not contain the password hash")
	}
	claims, err := signer.Parse(token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Role != domain.RoleHost || claims.Name != "Ada Obi" {
		t.Errorf("claims missing current role/name: %+v", claims)
	}
}
