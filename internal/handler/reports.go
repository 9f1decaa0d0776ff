package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jairsl2206/restaurant-sub000/internal/report"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

// ReportServicer defines the service methods needed by report handlers.
// Satisfied by *service.ReportService; narrow interface for testability.
type ReportServicer interface {
	Sales(ctx context.Context, startDate, endDate string) (*service.SalesReport, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportServicer
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportServicer) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports behind an admin role check.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sales", h.Sales)
}

// --- Response types ---

type summaryResponse struct {
	OrdersCount   int    `json:"orders_count"`
	TotalRevenue  string `json:"total_revenue"`
	AverageTicket string `json:"average_ticket"`
}

type dailySalesResponse struct {
	Date         string `json:"date"`
	OrdersCount  int    `json:"orders_count"`
	DailyRevenue string `json:"daily_revenue"`
}

type itemSalesResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Revenue  string `json:"revenue"`
}

type categorySalesResponse struct {
	Category string              `json:"category"`
	Quantity int                 `json:"quantity"`
	Revenue  string              `json:"revenue"`
	Items    []itemSalesResponse `json:"items"`
}

type periodResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// salesReportResponse keeps the camelCase list keys the dashboard charts
// read.
type salesReportResponse struct {
	Period     periodResponse          `json:"period"`
	Summary    summaryResponse         `json:"summary"`
	DailySales []dailySalesResponse    `json:"dailySales"`
	TopItems   []categorySalesResponse `json:"topItems"`
}

// --- Handlers ---

// Sales handles GET /reports/sales?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD.
// Both dates are business days and inclusive.
func (h *ReportsHandler) Sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := h.svc.Sales(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		writeServiceError(w, r, "sales report", err)
		return
	}

	writeJSON(w, http.StatusOK, toSalesReportResponse(rep))
}

func toSalesReportResponse(rep *service.SalesReport) salesReportResponse {
	resp := salesReportResponse{
		Period: periodResponse{Start: rep.Start, End: rep.End},
		Summary: summaryResponse{
			OrdersCount:   rep.Summary.OrdersCount,
			TotalRevenue:  rep.Summary.TotalRevenue.StringFixed(2),
			AverageTicket: rep.Summary.AverageTicket.StringFixed(2),
		},
		DailySales: make([]dailySalesResponse, len(rep.DailySales)),
		TopItems:   make([]categorySalesResponse, len(rep.TopItems)),
	}

	for i, d := range rep.DailySales {
		resp.DailySales[i] = dailySalesResponse{
			Date:         d.Date.Format(report.DateLayout),
			OrdersCount:  d.OrdersCount,
			DailyRevenue: d.DailyRevenue.StringFixed(2),
		}
	}

	for i, c := range rep.TopItems {
		items := make([]itemSalesResponse, len(c.Items))
		for j, it := range c.Items {
			items[j] = itemSalesResponse{Name: it.Name, Quantity: it.Quantity, Revenue: it.Revenue.StringFixed(2)}
		}
		resp.TopItems[i] = categorySalesResponse{
			Category: c.Category,
			Quantity: c.Quantity,
			Revenue:  c.Revenue.StringFixed(2),
			Items:    items,
		}
	}
	return resp
}
