// Package server exposes model invocation over HTTP for `sluice serve`.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=handler.go -destination=responder_mock_test.go -package=server

// maxRequestBytes bounds the /generate request body.
const maxRequestBytes = 1 << 20

// Responder answers a prompt, reporting failure as ok == false.
// *scenario.Runner implements it.
type Responder interface {
	GetResponse(ctx context.Context, prompt, modelID string) (text string, ok bool)
}

// Handler is the HTTP API layer over a Responder.
type Handler struct {
	responder Responder
	source    string
}

// NewHandler creates a handler; source is reported by /health.
func NewHandler(r Responder, source string) *Handler {
	return &Handler{responder: r, source: source}
}

// RegisterRoutes attaches the endpoints to the router. Middleware in
// generate applies to /generate only so health checks are never throttled.
func (h *Handler) RegisterRoutes(r chi.Router, generate ...func(http.Handler) http.Handler) {
	r.Get("/health", h.handleHealth)
	r.With(generate...).Post("/generate", h.handleGenerate)
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	ModelID string `json:"model_id,omitempty"`
}

type generateResponse struct {
	OutputText string `json:"output_text"`
}

type healthResponse struct {
	Status string `json:"status"`
	Source string `json:"source"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Source: h.source})
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	text, ok := h.responder.GetResponse(r.Context(), req.Prompt, req.ModelID)
	if !ok {
		// Details are in the server log under the invocation ID.
		writeError(w, http.StatusBadGateway, "model invocation failed")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{OutputText: text})
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
