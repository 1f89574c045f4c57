package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/queendomzy/swiftstay-api/internal/http/response"
	"github.com/queendomzy/swiftstay-api/internal/platform/ai"
	"github.com/queendomzy/swiftstay-api/pkg/logger"
)

type AIHandler struct {
	Client *ai.Client
}

func NewAIHandler(client *ai.Client) *AIHandler {
	return &AIHandler{Client: client}
}

func (h *AIHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.generate)
	return r
}

func (h *AIHandler) generate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Prompt) == "" {
		response.BadRequest(w, "prompt is required")
		return
	}

	reply, err := h.Client.Generate(r.Context(), in.Prompt)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			response.WriteError(w, http.StatusServiceUnavailable, "AI generation is not configured", response.CodeNotConfigured)
			return
		}
		// The prompt itself stays out of the logs.
		logger.ErrorContext(r.Context(), "AI generation failed", "error", err)
		response.WriteError(w, http.StatusBadGateway, "AI service error", response.CodeUpstreamError)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"reply": reply})
}
