package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/jairsl2206/restaurant-sub000/internal/promotion"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

// MenuServicer defines the service methods needed by menu handlers.
// Satisfied by *service.MenuService; narrow interface for testability.
type MenuServicer interface {
	List(ctx context.Context, availableOnly bool) ([]service.PricedMenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (service.PricedMenuItem, error)
	Create(ctx context.Context, in service.MenuItemInput) (service.PricedMenuItem, error)
	Update(ctx context.Context, id uuid.UUID, in service.MenuItemInput) (service.PricedMenuItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Categories(ctx context.Context) ([]string, error)
	RenameCategory(ctx context.Context, from, to string) (service.RenameResult, error)
}

// MenuHandler handles menu item and category endpoints.
type MenuHandler struct {
	svc MenuServicer
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(svc MenuServicer) *MenuHandler {
	return &MenuHandler{svc: svc}
}

// RegisterRoutes registers the public menu endpoint.
// Expected to be mounted at /menu.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListAvailable)
}

// RegisterAdminRoutes registers menu management endpoints. Expected to be
// mounted at /menu behind an admin role check.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/items", h.List)
	r.Post("/items", h.Create)
	r.Get("/items/{id}", h.Get)
	r.Put("/items/{id}", h.Update)
	r.Delete("/items/{id}", h.Delete)
	r.Get("/categories", h.Categories)
	r.Put("/categories/{name}", h.RenameCategory)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	ImageURL        string           `json:"image_url"`
	Category        string           `json:"category"`
	Available       *bool            `json:"available"`
	PromotionType   string           `json:"promotion_type"`
	PromotionValue  decimal.Decimal  `json:"promotion_value"`
	PromotionActive bool             `json:"promotion_active"`
}

type renameCategoryRequest struct {
	Name string `json:"name"`
}

type menuItemResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	Price           string    `json:"price"`
	FinalPrice      string    `json:"final_price"`
	HasPromotion    bool      `json:"has_promotion"`
	AppliedType     *string   `json:"applied_promotion_type"`
	DiscountAmount  string    `json:"discount_amount"`
	PromotionType   *string   `json:"promotion_type"`
	PromotionValue  *string   `json:"promotion_value"`
	PromotionActive bool      `json:"promotion_active"`
	ImageURL        *string   `json:"image_url"`
	Category        *string   `json:"category"`
	Available       bool      `json:"available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type renameFailureResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Error string    `json:"error"`
}

type renameResponse struct {
	Updated int                     `json:"updated"`
	Failed  []renameFailureResponse `json:"failed"`
}

func toMenuItemResponse(p service.PricedMenuItem) menuItemResponse {
	it := p.Item
	resp := menuItemResponse{
		ID:              it.ID,
		Name:            it.Name,
		Price:           numericToString(it.Price),
		FinalPrice:      p.Price.FinalPrice.StringFixed(2),
		HasPromotion:    p.Price.HasPromotion,
		DiscountAmount:  p.Price.DiscountAmount.StringFixed(2),
		PromotionActive: it.PromotionActive,
		Available:       it.Available,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
	if p.Price.HasPromotion {
		t := string(p.Price.PromotionType)
		resp.AppliedType = &t
	}
	resp.Description = textPtr(it.Description)
	resp.ImageURL = textPtr(it.ImageUrl)
	resp.Category = textPtr(it.Category)
	resp.PromotionType = textPtr(it.PromotionType)
	if it.PromotionValue.Valid {
		v := numericToString(it.PromotionValue)
		resp.PromotionValue = &v
	}
	return resp
}

// --- Handlers ---

// ListAvailable handles GET /menu: available items with final prices.
func (h *MenuHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

// List handles GET /menu/items, unavailable items included.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// Get handles GET /menu/items/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "menu item")
	if !ok {
		return
	}

	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create handles POST /menu/items.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "create menu item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update handles PUT /menu/items/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "menu item")
	if !ok {
		return
	}

	in, ok := decodeMenuItem(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, "update menu item", err)
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete handles DELETE /menu/items/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "menu item")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete menu item", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Categories handles GET /menu/categories.
func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, r, "list categories", err)
		return
	}
	if cats == nil {
		cats = []string{}
	}

	writeJSON(w, http.StatusOK, cats)
}

// RenameCategory handles PUT /menu/categories/{name}. Items that fail to
// move are reported, not fatal.
func (h *MenuHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	from, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category name"})
		return
	}

	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := h.svc.RenameCategory(r.Context(), from, req.Name)
	if err != nil {
		writeServiceError(w, r, "rename category", err)
		return
	}

	failed := make([]renameFailureResponse, len(res.Failed))
	for i, f := range res.Failed {
		failed[i] = renameFailureResponse{ID: f.ID, Name: f.Name, Error: f.Error}
	}

	writeJSON(w, http.StatusOK, renameResponse{Updated: res.Updated, Failed: failed})
}

// --- Helpers ---

func (h *MenuHandler) list(w http.ResponseWriter, r *http.Request, availableOnly bool) {
	items, err := h.svc.List(r.Context(), availableOnly)
	if err != nil {
		writeServiceError(w, r, "list menu items", err)
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeMenuItem(w http.ResponseWriter, r *http.Request) (service.MenuItemInput, bool) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return service.MenuItemInput{}, false
	}

	if req.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
		return service.MenuItemInput{}, false
	}

	in := service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Available:   req.Available == nil || *req.Available,
	}
	if req.PromotionType != "" {
		in.Promotion = &promotion.Promotion{
			Type:   promotion.Type(req.PromotionType),
			Value:  req.PromotionValue,
			Active: req.PromotionActive,
		}
	}
	return in, true
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
