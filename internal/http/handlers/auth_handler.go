package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/http/metrics"
	"github.com/queendomzy/swiftstay-api/internal/http/middleware"
	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/http/validate"
	"github.com/queendomzy/swiftstay-api/internal/service"
)

type AuthHandler struct {
	Auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	return r
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, token, err := h.Auth.Register(r.Context(), &in)
	if err != nil {
		response.FromError(w, r, "auth.register", err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues(user.Role).Inc()
	response.JSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, token, err := h.Auth.Login(r.Context(), &in)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		response.FromError(w, r, "auth.login", err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	response.JSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

// Profile serves the authenticated user's own record; mounted behind
// RequireAuth.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "authorization required")
		return
	}
	user, err := h.Auth.Profile(r.Context(), claims.Sub)
	if err != nil {
		response.FromError(w, r, "auth.profile", err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}
