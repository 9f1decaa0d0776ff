package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SettingsServicer defines the service methods needed by settings handlers.
// Satisfied by *service.SettingsService.
type SettingsServicer interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, values map[string]string) (map[string]string, error)
}

// SettingsHandler handles the restaurant settings endpoints.
type SettingsHandler struct {
	svc SettingsServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc SettingsServicer) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers settings endpoints.
// Expected to be mounted at /settings behind an admin role check.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// Get handles GET /settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	values, err := h.svc.All(r.Context())
	if err != nil {
		writeServiceError(w, r, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// Update handles PUT /settings with a flat {key: value} object.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no settings given"})
		return
	}

	values, err := h.svc.Set(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}
