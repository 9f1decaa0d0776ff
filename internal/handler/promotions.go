package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

// PromotionServicer defines the service methods needed by promotion handlers.
// Satisfied by *service.MenuService.
type PromotionServicer interface {
	CategoryPromotions(ctx context.Context) ([]database.CategoryPromotion, error)
	SetCategoryPromotion(ctx context.Context, in service.CategoryPromotionInput) (database.CategoryPromotion, error)
	DeleteCategoryPromotion(ctx context.Context, category string) error
}

// PromotionHandler handles category promotion endpoints.
type PromotionHandler struct {
	svc PromotionServicer
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(svc PromotionServicer) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

// RegisterRoutes registers category promotion endpoints.
// Expected to be mounted at /promotions behind an admin role check.
func (h *PromotionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.List)
	r.Put("/categories/{category}", h.Set)
	r.Delete("/categories/{category}", h.Delete)
}

type categoryPromotionRequest struct {
	Type   string          `json:"promotion_type"`
	Value  decimal.Decimal `json:"promotion_value"`
	Active *bool           `json:"active"`
}

type categoryPromotionResponse struct {
	Category  string    `json:"category"`
	Type      string    `json:"promotion_type"`
	Value     string    `json:"promotion_value"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategoryPromotionResponse(cp database.CategoryPromotion) categoryPromotionResponse {
	return categoryPromotionResponse{
		Category:  cp.Category,
		Type:      cp.PromotionType,
		Value:     numericToString(cp.PromotionValue),
		Active:    cp.Active,
		UpdatedAt: cp.UpdatedAt,
	}
}

// List handles GET /promotions/categories.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promos, err := h.svc.CategoryPromotions(r.Context())
	if err != nil {
		writeServiceError(w, r, "list category promotions", err)
		return
	}

	resp := make([]categoryPromotionResponse, len(promos))
	for i, cp := range promos {
		resp[i] = toCategoryPromotionResponse(cp)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Set handles PUT /promotions/categories/{category}.
func (h *PromotionHandler) Set(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	var req categoryPromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cp, err := h.svc.SetCategoryPromotion(r.Context(), service.CategoryPromotionInput{
		Category: category,
		Type:     req.Type,
		Value:    req.Value,
		Active:   req.Active == nil || *req.Active,
	})
	if err != nil {
		writeServiceError(w, r, "set category promotion", err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryPromotionResponse(cp))
}

// Delete handles DELETE /promotions/categories/{category}.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteCategoryPromotion(r.Context(), category); err != nil {
		writeServiceError(w, r, "delete category promotion", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func categoryParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil || category == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return "", false
	}
	return category, true
}
