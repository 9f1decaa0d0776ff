package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
	"github.com/jairsl2206/restaurant-sub000/internal/report"
)

// ReportStore defines the DB methods needed by the report service.
// Satisfied by *database.Queries.
type ReportStore interface {
	ListCompletedOrdersBetween(ctx context.Context, arg database.ListCompletedOrdersBetweenParams) ([]database.Order, error)
	ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
}

// SalesReport is a report together with the business-day range it covers.
type SalesReport struct {
	report.Report
	Start time.Time
	End   time.Time
}

// ReportService builds sales reports in the restaurant's time zone.
type ReportService struct {
	store ReportStore
	loc   *time.Location
}

// NewReportService creates a new ReportService.
func NewReportService(store ReportStore, loc *time.Location) *ReportService {
	return &ReportService{store: store, loc: loc}
}

// Sales aggregates the completed orders of the business days startDate
// through endDate, both YYYY-MM-DD and inclusive.
func (s *ReportService) Sales(ctx context.Context, startDate, endDate string) (*SalesReport, error) {
	if startDate == "" || endDate == "" {
		return nil, &order.ValidationError{Msg: "startDate and endDate are required"}
	}
	from, err := report.ParseDate(startDate, s.loc)
	if err != nil {
		return nil, &order.ValidationError{Msg: "invalid startDate, expected YYYY-MM-DD"}
	}
	to, err := report.ParseDate(endDate, s.loc)
	if err != nil {
		return nil, &order.ValidationError{Msg: "invalid endDate, expected YYYY-MM-DD"}
	}
	if to.Before(from) {
		return nil, &order.ValidationError{Msg: "endDate must not be before startDate"}
	}

	start, end := report.Range(from, to, s.loc)
	rows, err := s.store.ListCompletedOrdersBetween(ctx, database.ListCompletedOrdersBetweenParams{
		Start: start,
		End:   end,
	})
	if err != nil {
		return nil, dbError("list completed orders", err)
	}

	orders := make([]report.Order, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		orders[i] = report.Order{
			CreatedAt: r.CreatedAt,
			Total:     numericToDecimal(r.Total),
			Completed: r.Status == string(order.StatusCompleted),
		}
		index[r.ID] = i
		ids[i] = r.ID
	}

	if len(ids) > 0 {
		items, err := s.store.ListOrderItemsByOrders(ctx, ids)
		if err != nil {
			return nil, dbError("list order items", err)
		}
		for _, it := range items {
			i, ok := index[it.OrderID]
			if !ok {
				continue
			}
			orders[i].Items = append(orders[i].Items, report.Item{
				Name:     itemcodec.JoinNote(it.Name, it.Note),
				Quantity: int(it.Quantity),
				Price:    numericToDecimal(it.Price),
			})
		}
	}

	menu, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, dbError("list menu items", err)
	}
	catalog := make([]report.CatalogEntry, len(menu))
	for i, m := range menu {
		catalog[i] = report.CatalogEntry{Name: m.Name, Category: m.Category.String}
	}

	return &SalesReport{
		Report: report.Build(orders, catalog, s.loc),
		Start:  start,
		End:    end,
	}, nil
}
