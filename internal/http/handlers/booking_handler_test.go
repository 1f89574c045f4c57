package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/queendomzy/swiftstay-api/internal/domain"
)

// ---------- Mocks ----------

type stubBookingService struct {
	createFn func(ctx context.Context, req *domain.CreateBookingRequest, key string) (*domain.Booking, error)
	getFn    func(ctx context.Context, id int64) (*domain.Booking, error)
	listFn   func(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error)
	cancelFn func(ctx context.Context, id, userID int64) error

	lastKey string
}

func (s *stubBookingService) Create(ctx context.Context, req *domain.CreateBookingRequest, key string) (*domain.Booking, error) {
	s.lastKey = key
	return s.createFn(ctx, req, key)
}

func (s *stubBookingService) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.getFn(ctx, id)
}

func (s *stubBookingService) List(ctx context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
	return s.listFn(ctx, limit, offset, status)
}

func (s *stubBookingService) Cancel(ctx context.Context, id, userID int64) error {
	return s.cancelFn(ctx, id, userID)
}

func bookingTestServer(t *testing.T, svc *stubBookingService) (*httptest.Server, string) {
	t.Helper()
	signer := newTestSigner(t)
	srv := httptest.NewServer(NewBookingHandler(svc, signer).Routes())
	t.Cleanup(srv.Close)

	token, err := signer.Issue(&domain.User{ID: 3, Email: "ada@example.com", FullName: "Ada Obi", Role: domain.RoleGuest})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return srv, token
}

func authedRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// ---------- Tests ----------

func TestCreateBookingEndpoint(t *testing.T) {
	svc := &stubBookingService{
		createFn: func(_ context.Context, req *domain.CreateBookingRequest, _ string) (*domain.Booking, error) {
			return &domain.Booking{
				ID:         11,
				UserID:     req.UserID,
				PropertyID: req.PropertyID,
				CheckIn:    req.CheckIn,
				CheckOut:   req.CheckOut,
				TotalPrice: 25000,
				Commission: 2000,
				Status:     domain.BookingPending,
			}, nil
		},
	}
	srv, token := bookingTestServer(t, svc)

	body := `{"propertyId":7,"checkIn":"2025-03-10","checkOut":"2025-03-12"}`
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/", bytes.NewReader([]byte(body)))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", "retry-key-1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var out domain.Booking
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalPrice != 25000 || out.Commission != 2000 {
		t.Errorf("totals = %d/%d, want 25000/2000", out.TotalPrice, out.Commission)
	}
	if out.Status != domain.BookingPending {
		t.Errorf("status = %s, want pending", out.Status)
	}
	// The user comes from the token, never the body.
	if out.UserID != 3 {
		t.Errorf("user = %d, want the token's subject 3", out.UserID)
	}
	if svc.lastKey != "retry-key-1" {
		t.Errorf("idempotency key = %q, want retry-key-1", svc.lastKey)
	}
}

func TestCreateBookingEndpointRequiresAuth(t *testing.T) {
	svc := &stubBookingService{
		createFn: func(context.Context, *domain.CreateBookingRequest, string) (*domain.Booking, error) {
			t.Error("service must not be called without a token")
			return nil, domain.ErrUnauthorized
		},
	}
	srv, _ := bookingTestServer(t, svc)

	resp := authedRequest(t, http.MethodPost, srv.URL+"/", "", `{"propertyId":7,"checkIn":"2025-03-10","checkOut":"2025-03-12"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	resp2 := authedRequest(t, http.MethodPost, srv.URL+"/", "not.a.token", `{}`)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("garbage token: status = %d, want 403", resp2.StatusCode)
	}
}

func TestCreateBookingEndpointBadDates(t *testing.T) {
	svc := &stubBookingService{
		createFn: func(context.Context, *domain.CreateBookingRequest, string) (*domain.Booking, error) {
			t.Error("service must not be called for malformed dates")
			return nil, domain.ErrValidation
		},
	}
	srv, token := bookingTestServer(t, svc)

	cases := []string{
		`{"propertyId":7,"checkIn":"10/03/2025","checkOut":"2025-03-12"}`,
		`{"propertyId":7,"checkIn":"2025-03-10","checkOut":"tomorrow"}`,
		`{"propertyId":7,"checkOut":"2025-03-12"}`,
	}
	for i, body := range cases {
		resp := authedRequest(t, http.MethodPost, srv.URL+"/", token, body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, resp.StatusCode)
		}
	}
}

func TestCreateBookingEndpointUnknownProperty(t *testing.T) {
	svc := &stubBookingService{
		createFn: func(_ context.Context, req *domain.CreateBookingRequest, _ string) (*domain.Booking, error) {
			return nil, fmt.Errorf("%w: property %d", domain.ErrNotFound, req.PropertyID)
		},
	}
	srv, token := bookingTestServer(t, svc)

	resp := authedRequest(t, http.MethodPost, srv.URL+"/", token, `{"propertyId":999,"checkIn":"2025-03-10","checkOut":"2025-03-12"}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListBookingsEndpoint(t *testing.T) {
	var gotStatus *domain.BookingStatus
	svc := &stubBookingService{
		listFn: func(_ context.Context, limit, offset int, status *domain.BookingStatus) ([]domain.Booking, error) {
			gotStatus = status
			return nil, nil
		},
	}
	srv, token := bookingTestServer(t, svc)

	resp := authedRequest(t, http.MethodGet, srv.URL+"/?status=confirmed", token, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if gotStatus == nil || *gotStatus != domain.BookingConfirmed {
		t.Errorf("status filter = %v, want confirmed", gotStatus)
	}
	// Empty result is an empty array, not null.
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("body = %s, want []", raw)
	}

	bad := authedRequest(t, http.MethodGet, srv.URL+"/?status=on_trip", token, "")
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown status filter: status = %d, want 400", bad.StatusCode)
	}
}

func TestCancelBookingEndpoint(t *testing.T) {
	var gotID, gotUserID int64
	svc := &stubBookingService{
		cancelFn: func(_ context.Context, id, userID int64) error {
			gotID, gotUserID = id, userID
			return nil
		},
	}
	srv, token := bookingTestServer(t, svc)

	resp := authedRequest(t, http.MethodDelete, srv.URL+"/11", token, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if gotID != 11 || gotUserID != 3 {
		t.Errorf("cancel(%d, %d), want (11, 3)", gotID, gotUserID)
	}

	svc.cancelFn = func(_ context.Context, id, _ int64) error {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	gone := authedRequest(t, http.MethodDelete, srv.URL+"/11", token, "")
	gone.Body.Close()
	if gone.StatusCode != http.StatusNotFound {
		t.Errorf("already cancelled: status = %d, want 404", gone.StatusCode)
	}
}
