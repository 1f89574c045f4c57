package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/http/metrics"
	"github.com/queendomzy/swiftstay-api/internal/http/middleware"
	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/http/validate"
	"github.com/queendomzy/swiftstay-api/internal/platform/auth"
	"github.com/queendomzy/swiftstay-api/internal/service"
)

type PaymentHandler struct {
	Payments service.PaymentService
	Signer   *auth.Signer
}

func NewPaymentHandler(payments service.PaymentService, signer *auth.Signer) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Signer: signer}
}

func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(h.Signer))
	r.Post("/", h.record)
	r.Get("/", h.list)
	r.Post("/{id}/confirm", h.confirm)
	return r
}

// recordPaymentRequest accepts "provider" as an alias for "method"; older
// clients still send it.
type recordPaymentRequest struct {
	BookingID int64  `json:"bookingId" validate:"required,gt=0"`
	Method    string `json:"method"`
	Provider  string `json:"provider"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Reference string `json:"reference"`
}

func (h *PaymentHandler) record(w http.ResponseWriter, r *http.Request) {
	var in recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.Method == "" {
		in.Method = in.Provider
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	payment, err := h.Payments.Record(r.Context(), &domain.RecordPaymentRequest{
		BookingID: in.BookingID,
		Method:    in.Method,
		Amount:    in.Amount,
		Reference: in.Reference,
	})
	if err != nil {
		response.FromError(w, r, "payment.record", err)
		return
	}
	metrics.PaymentsRecordedTotal.WithLabelValues(string(payment.Status)).Inc()
	response.JSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) confirm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid id")
		return
	}
	payment, err := h.Payments.Confirm(r.Context(), id)
	if err != nil {
		response.FromError(w, r, "payment.confirm", err)
		return
	}
	metrics.PaymentsRecordedTotal.WithLabelValues(string(payment.Status)).Inc()
	response.JSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	ps, err := h.Payments.List(r.Context(), limit, offset)
	if err != nil {
		response.FromError(w, r, "payment.list", err)
		return
	}
	if ps == nil {
		ps = []domain.Payment{}
	}
	response.JSON(w, http.StatusOK, ps)
}
