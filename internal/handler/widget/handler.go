// Package widget hosts the chat widget's session manager over HTTP: one
// controller and visibility gate per authenticated shopper.
package widget

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/identity"
	"github.com/PandeyAnukrati/Carti/internal/model/chat"
	"github.com/PandeyAnukrati/Carti/internal/session"
	"github.com/PandeyAnukrati/Carti/pkg/utils"
)

// Handler serves the widget endpoints.
type Handler struct {
	registry *session.Registry
	verifier identity.Verifier
	log      zerolog.Logger
}

// New creates the widget handler. verifier may be nil; all requests are then
// treated as anonymous.
func New(registry *session.Registry, verifier identity.Verifier, log zerolog.Logger) *Handler {
	return &Handler{registry: registry, verifier: verifier, log: log}
}

// RegisterRoutes mounts the widget routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/widget/open", h.handleOpen)
	r.Post("/widget/close", h.handleClose)
	r.Get("/widget/state", h.handleState)
	r.Post("/widget/messages", h.handleSend)
	r.Post("/widget/reset", h.handleReset)
	r.Get("/widget/ws", h.handleWebSocket)
}

// stateResponse is the widget snapshot rendered to the UI.
type stateResponse struct {
	Open     bool            `json:"open"`
	State    session.State   `json:"state"`
	Messages chat.Transcript `json:"messages"`
}

func snapshot(w *session.Widget) stateResponse {
	return stateResponse{
		Open:     w.Gate.IsOpen(),
		State:    w.Controller.State(),
		Messages: w.Controller.Messages(),
	}
}

func (h *Handler) widget(r *http.Request) *session.Widget {
	binding := identity.FromRequest(r, h.verifier)
	return h.registry.For(r.Context(), binding)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	widget := h.widget(r)
	widget.Gate.Open()
	utils.RespondJSON(w, http.StatusOK, snapshot(widget))
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	widget := h.widget(r)
	widget.Gate.Close()
	utils.RespondJSON(w, http.StatusOK, snapshot(widget))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, snapshot(h.widget(r)))
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	widget := h.widget(r)
	// Rejections (blank text, reply already in flight) are silent; the
	// caller just gets the unchanged snapshot back.
	widget.Controller.Send(r.Context(), payload.Text)
	utils.RespondJSON(w, http.StatusOK, snapshot(widget))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	widget := h.widget(r)
	widget.Controller.Reset(r.Context())
	utils.RespondJSON(w, http.StatusOK, snapshot(widget))
}
