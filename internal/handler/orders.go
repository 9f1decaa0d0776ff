package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/enum"
	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/jairsl2206/restaurant-sub000/internal/itemdiff"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/internal/middleware"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
	"github.com/jairsl2206/restaurant-sub000/internal/report"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Create(ctx context.Context, p order.NewParams) (*order.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*order.Order, error)
	List(ctx context.Context, filter service.OrderFilter) ([]*order.Order, error)
	Units(ctx context.Context, id uuid.UUID) ([]itemcodec.Unit, error)
	Changes(ctx context.Context, id uuid.UUID) (itemdiff.Result, error)
	ReplaceItems(ctx context.Context, id uuid.UUID, items []order.Item) (*order.Order, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, to order.Status) (*order.Order, error)
	Advance(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, anyStatus bool) (*order.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderServicer
	loc *time.Location
}

// NewOrderHandler creates a new OrderHandler. loc is the restaurant's time
// zone, used to read history cutoff dates.
func NewOrderHandler(svc OrderServicer, loc *time.Location) *OrderHandler {
	return &OrderHandler{svc: svc, loc: loc}
}

// RegisterRoutes registers staff order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.ListActive)
	r.Get("/all", h.ListAll)
	r.Get("/kitchen", h.ListKitchen)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/units", h.Units)
	r.Get("/{id}/changes", h.Changes)
	r.Put("/{id}", h.ReplaceItems)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/advance", h.Advance)
	r.Post("/{id}/cancel", h.Cancel)
}

// RegisterAdminRoutes registers the destructive order endpoints. Expected to
// be mounted at /orders behind an admin role check.
func (h *OrderHandler) RegisterAdminRoutes(r chi.Router) {
	r.Delete("/", h.ClearAll)
	r.Delete("/history", h.DeleteHistory)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type orderItemRequest struct {
	Name     string          `json:"name"`
	Note     string          `json:"note"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type customerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// createOrderRequest takes both the snake_case fields and the camelCase
// shape ({tableNumber|customerData, items, isDelivery}) older clients post.
type createOrderRequest struct {
	TableNumber     int                `json:"table_number"`
	IsDelivery      bool               `json:"is_delivery"`
	IsPickup        bool               `json:"is_pickup"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	CustomerAddress string             `json:"customer_address"`
	Items           []orderItemRequest `json:"items"`

	TableNumberCamel int              `json:"tableNumber"`
	IsDeliveryCamel  bool             `json:"isDelivery"`
	IsPickupCamel    bool             `json:"isPickup"`
	CustomerData     *customerRequest `json:"customerData"`
}

func (req *createOrderRequest) params() order.NewParams {
	p := order.NewParams{
		TableNumber: req.TableNumber,
		IsDelivery:  req.IsDelivery || req.IsDeliveryCamel,
		IsPickup:    req.IsPickup || req.IsPickupCamel,
		Items:       toOrderItems(req.Items),
	}
	if p.TableNumber == 0 {
		p.TableNumber = req.TableNumberCamel
	}
	if !p.IsDelivery && !p.IsPickup {
		return p
	}
	if c := req.CustomerData; c != nil {
		p.Customer = &order.Customer{Name: c.Name, Phone: c.Phone, Address: c.Address}
	} else {
		p.Customer = &order.Customer{Name: req.CustomerName, Phone: req.CustomerPhone, Address: req.CustomerAddress}
	}
	return p
}

type replaceItemsRequest struct {
	Items []orderItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	Name     string `json:"name"`
	Note     string `json:"note"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	TableNumber     *int                `json:"table_number"`
	Status          string              `json:"status"`
	Total           string              `json:"total"`
	IsDelivery      bool                `json:"is_delivery"`
	IsPickup        bool                `json:"is_pickup"`
	CustomerName    *string             `json:"customer_name"`
	CustomerPhone   *string             `json:"customer_phone"`
	CustomerAddress *string             `json:"customer_address"`
	IsUpdated       bool                `json:"is_updated"`
	OriginalItems   *string             `json:"original_items"`
	Items           string              `json:"items"`
	ItemList        []orderItemResponse `json:"item_list"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type groupResponse struct {
	Name     string `json:"name"`
	Note     string `json:"note"`
	Quantity int    `json:"quantity"`
}

// kitchenOrderResponse adds the cook-facing grouped items.
type kitchenOrderResponse struct {
	orderResponse
	GroupedItems []groupResponse `json:"grouped_items"`
}

type unitResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Note  string `json:"note"`
	Price string `json:"price"`
}

type keptUnitResponse struct {
	unitResponse
	OriginalNote string `json:"original_note"`
	NoteChanged  bool   `json:"note_changed"`
}

type changesResponse struct {
	Changed bool               `json:"changed"`
	Kept    []keptUnitResponse `json:"kept"`
	Removed []unitResponse     `json:"removed"`
	Added   []unitResponse     `json:"added"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.svc.Create(r.Context(), req.params())
	if err != nil {
		writeServiceError(w, r, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// ListActive handles GET /orders: orders that are neither completed nor
// cancelled, oldest first.
func (h *OrderHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, service.FilterActive)
}

// ListAll handles GET /orders/all, newest first.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, service.FilterAll)
}

// ListKitchen handles GET /orders/kitchen: the COOKING queue with items
// grouped by name and note.
func (h *OrderHandler) ListKitchen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.List(r.Context(), service.FilterKitchen)
	if err != nil {
		writeServiceError(w, r, "list kitchen orders", err)
		return
	}

	resp := make([]kitchenOrderResponse, len(orders))
	for i, o := range orders {
		groups := itemcodec.GroupEntries(o.Entries())
		gr := make([]groupResponse, len(groups))
		for j, g := range groups {
			gr[j] = groupResponse{Name: g.Name, Note: g.Note, Quantity: g.Quantity}
		}
		resp[i] = kitchenOrderResponse{orderResponse: toOrderResponse(o), GroupedItems: gr}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "get order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Units handles GET /orders/{id}/units.
func (h *OrderHandler) Units(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	units, err := h.svc.Units(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "order units", err)
		return
	}

	writeJSON(w, http.StatusOK, toUnitResponses(units))
}

// Changes handles GET /orders/{id}/changes.
func (h *OrderHandler) Changes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	res, err := h.svc.Changes(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "order changes", err)
		return
	}

	kept := make([]keptUnitResponse, len(res.Kept))
	for i, m := range res.Kept {
		kept[i] = keptUnitResponse{
			unitResponse: toUnitResponse(m.Current),
			OriginalNote: m.OriginalNote,
			NoteChanged:  m.NoteChanged(),
		}
	}

	writeJSON(w, http.StatusOK, changesResponse{
		Changed: res.Changed(),
		Kept:    kept,
		Removed: toUnitResponses(res.Removed),
		Added:   toUnitResponses(res.Added),
	})
}

// ReplaceItems handles PUT /orders/{id}.
func (h *OrderHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	var req replaceItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	o, err := h.svc.ReplaceItems(r.Context(), id, toOrderItems(req.Items))
	if err != nil {
		writeServiceError(w, r, "replace order items", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// UpdateStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	to, err := order.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	o, err := h.svc.ChangeStatus(r.Context(), id, to)
	if err != nil {
		writeServiceError(w, r, "change order status", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Advance handles POST /orders/{id}/advance.
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	o, err := h.svc.Advance(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "advance order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Cancel handles POST /orders/{id}/cancel. Admins can cancel from any open
// status, everyone else only from COOKING.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	admin := middleware.HasRole(r.Context(), enum.UserRoleAdmin)
	o, err := h.svc.Cancel(r.Context(), id, admin)
	if err != nil {
		writeServiceError(w, r, "cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "order")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete order", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteHistory handles DELETE /orders/history?before=YYYY-MM-DD. Closed
// orders created before the start of that business day are removed.
func (h *OrderHandler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	before := r.URL.Query().Get("before")
	if before == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "before is required"})
		return
	}
	date, err := report.ParseDate(before, h.loc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid before, expected YYYY-MM-DD"})
		return
	}
	cutoff, _ := report.Period(date, h.loc)

	n, err := h.svc.DeleteClosedBefore(r.Context(), cutoff)
	if err != nil {
		writeServiceError(w, r, "delete order history", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// ClearAll handles DELETE /orders.
func (h *OrderHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll(r.Context())
	if err != nil {
		writeServiceError(w, r, "clear orders", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// --- Helpers ---

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filter service.OrderFilter) {
	orders, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "list orders", err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseID reads the {id} URL parameter and answers 400 when it is not a UUID.
func parseID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + resource + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps service errors to status codes. Anything that is
// not a validation, transition or not-found error is logged and hidden.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, order.ErrValidation), errors.Is(err, order.ErrInvalidTransition):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, order.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		logger.FromCtx(r.Context()).Error(op, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toOrderItems(req []orderItemRequest) []order.Item {
	items := make([]order.Item, len(req))
	for i, it := range req {
		items[i] = order.Item{Name: it.Name, Note: it.Note, Quantity: it.Quantity, Price: it.Price}
	}
	return items
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Status:        string(o.Status),
		Total:         o.Total.StringFixed(2),
		IsDelivery:    o.IsDelivery,
		IsPickup:      o.IsPickup,
		IsUpdated:     o.IsUpdated,
		OriginalItems: o.OriginalItems,
		Items:         o.EncodedItems(),
		ItemList:      make([]orderItemResponse, len(o.Items)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.TableNumber > 0 {
		n := o.TableNumber
		resp.TableNumber = &n
	}
	if c := o.Customer; c != nil {
		resp.CustomerName = &c.Name
		resp.CustomerPhone = &c.Phone
		if c.Address != "" {
			resp.CustomerAddress = &c.Address
		}
	}
	for i, it := range o.Items {
		resp.ItemList[i] = orderItemResponse{
			Name:     it.Name,
			Note:     it.Note,
			Quantity: it.Quantity,
			Price:    it.Price.StringFixed(2),
			Subtotal: it.Subtotal().StringFixed(2),
		}
	}
	return resp
}

func toUnitResponse(u itemcodec.Unit) unitResponse {
	return unitResponse{Index: u.Index, Name: u.Name, Note: u.Note, Price: u.Price.StringFixed(2)}
}

func toUnitResponses(units []itemcodec.Unit) []unitResponse {
	resp := make([]unitResponse, len(units))
	for i, u := range units {
		resp[i] = toUnitResponse(u)
	}
	return resp
}
