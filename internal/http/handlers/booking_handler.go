package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/http/metrics"
	"github.com/queendomzy/swiftstay-api/internal/http/middleware"
	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/http/validate"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
	"github.com/queendomzy/swiftstay-api/internal/service"
)

type BookingHandler struct {
	Bookings service.BookingService
	Signer   *auth.Signer
}

func NewBookingHandler(bookings service.BookingService, signer *auth.Signer) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Signer: signer}
}

func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(h.Signer))
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.getByID)
	r.Delete("/{id}", h.cancel)
	return r
}

// checkIn/checkOut ride the wire as ISO dates ("2025-01-01").
const dateLayout = "2006-01-02"

type createBookingRequest struct {
	PropertyID int64  `json:"propertyId" validate:"required,gt=0"`
	CheckIn    string `json:"checkIn" validate:"required"`
	CheckOut   string `json:"checkOut" validate:"required"`
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	var in createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	checkIn, err := time.Parse(dateLayout, in.CheckIn)
	if err != nil {
		response.BadRequest(w, "checkIn must be a YYYY-MM-DD date")
		return
	}
	checkOut, err := time.Parse(dateLayout, in.CheckOut)
	if err != nil {
		response.BadRequest(w, "checkOut must be a YYYY-MM-DD date")
		return
	}

	booking, err := h.Bookings.Create(r.Context(), &domain.CreateBookingRequest{
		UserID:     claims.Sub,
		PropertyID: in.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromError(w, r, "booking.create", err)
		return
	}
	metrics.BookingsCreatedTotal.Inc()
	response.JSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) getByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	booking, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, r, "booking.get", err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	var status *domain.BookingStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, valid := domain.ParseBookingStatus(raw)
		if !valid {
			response.BadRequest(w, "invalid status (allowed: pending, confirmed, failed, cancelled)")
			return
		}
		status = &st
	}

	bs, err := h.Bookings.List(r.Context(), limit, offset, status)
	if err != nil {
		response.FromError(w, r, "booking.list", err)
		return
	}
	if bs == nil {
		bs = []domain.Booking{}
	}
	response.JSON(w, http.StatusOK, bs)
}

func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Bookings.Cancel(r.Context(), id, claims.Sub); err != nil {
		response.FromError(w, r, "booking.cancel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit, offset = 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "invalid limit")
			return 0, 0, false
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "invalid offset")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}
