// Package assistant exposes the answer-generation endpoint consumed by the
// chat widget.
package assistant

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/service/ai"
	"github.com/PandeyAnukrati/Carti/pkg/utils"
)

// Handler serves POST /chat_with_gemini.
type Handler struct {
	generator ai.Generator
	log       zerolog.Logger
}

// New creates the assistant handler. generator may be nil when no model is
// configured; the endpoint then reports unavailability.
func New(generator ai.Generator, log zerolog.Logger) *Handler {
	return &Handler{generator: generator, log: log}
}

// RegisterRoutes mounts the assistant routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat_with_gemini", h.handleChat)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Message == "" {
		utils.RespondError(w, http.StatusBadRequest, "No message provided")
		return
	}

	if h.generator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}

	reply, err := h.generator.Generate(r.Context(), payload.Message)
	if err != nil {
		h.log.Error().Err(err).Msg("answer generation failed")
		utils.RespondError(w, http.StatusInternalServerError, "Failed to get response from AI")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply})
}
