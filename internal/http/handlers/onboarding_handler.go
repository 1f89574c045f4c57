package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/domain"
	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/http/validate"
	"github.com/queendomzy/swiftstay-api/internal/repo/postgres"
)

type OnboardingHandler struct {
	Repo postgres.OnboardingRepo
}

func NewOnboardingHandler(repo postgres.OnboardingRepo) *OnboardingHandler {
	return &OnboardingHandler{Repo: repo}
}

func (h *OnboardingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	return r
}

type onboardingRequest struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Preferences []string `json:"preferences"`
	Website     string   `json:"website" validate:"omitempty,url"`
}

func (h *OnboardingHandler) create(w http.ResponseWriter, r *http.Request) {
	var in onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(&in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if in.Preferences == nil {
		in.Preferences = []string{}
	}

	app, err := h.Repo.Create(r.Context(), &domain.OnboardingApplication{
		Name:        in.Name,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Preferences: in.Preferences,
		Website:     in.Website,
	})
	if err != nil {
		response.FromError(w, r, "onboarding.create", err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Onboarding complete",
		"application": app,
	})
}
