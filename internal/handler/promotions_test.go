package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/handler"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
	"github.com/jairsl2206/restaurant-sub000/internal/service"
)

type mockPromotionService struct {
	listFn   func(ctx context.Context) ([]database.CategoryPromotion, error)
	setFn    func(ctx context.Context, in service.CategoryPromotionInput) (database.CategoryPromotion, error)
	deleteFn func(ctx context.Context, category string) error
}

func (m *mockPromotionService) CategoryPromotions(ctx context.Context) ([]database.CategoryPromotion, error) {
	return m.listFn(ctx)
}

func (m *mockPromotionService) SetCategoryPromotion(ctx context.Context, in service.CategoryPromotionInput) (database.CategoryPromotion, error) {
	return m.setFn(ctx, in)
}

func (m *mockPromotionService) DeleteCategoryPromotion(ctx context.Context, category string) error {
	return m.deleteFn(ctx, category)
}

func validationErr(msg string) error {
	return &order.ValidationError{Msg: msg}
}

func setupPromotionRouter(svc handler.PromotionServicer) *chi.Mux {
	h := handler.NewPromotionHandler(svc)
	r := chi.NewRouter()
	r.Route("/promotions", h.RegisterRoutes)
	return r
}

func TestPromotionList(t *testing.T) {
	svc := &mockPromotionService{
		listFn: func(_ context.Context) ([]database.CategoryPromotion, error) {
			return []database.CategoryPromotion{{
				Category:       "Bebidas",
				PromotionType:  "percentage",
				PromotionValue: numeric(t, "10"),
				Active:         true,
				UpdatedAt:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			}}, nil
		},
	}

	rr := doJSON(t, setupPromotionRouter(svc), "GET", "/promotions/categories", nil)
	assertStatus(t, rr, http.StatusOK)

	list := decodeList(t, rr)
	if len(list) != 1 {
		t.Fatalf("len: got %d", len(list))
	}
	if list[0]["category"] != "Bebidas" || list[0]["promotion_value"] != "10.00" || list[0]["active"] != true {
		t.Errorf("promotion: got %v", list[0])
	}
}

func TestPromotionSet(t *testing.T) {
	var got service.CategoryPromotionInput
	svc := &mockPromotionService{
		setFn: func(_ context.Context, in service.CategoryPromotionInput) (database.CategoryPromotion, error) {
			got = in
			return database.CategoryPromotion{
				Category:       in.Category,
				PromotionType:  in.Type,
				PromotionValue: numeric(t, in.Value.String()),
				Active:         in.Active,
			}, nil
		},
	}

	rr := doJSON(t, setupPromotionRouter(svc), "PUT", "/promotions/categories/Platillos%20fuertes", map[string]interface{}{
		"promotion_type":  "fixed",
		"promotion_value": "15",
	})
	assertStatus(t, rr, http.StatusOK)

	if got.Category != "Platillos fuertes" || got.Type != "fixed" || !got.Active {
		t.Errorf("input: got %+v", got)
	}
}

func TestPromotionSet_Inactive(t *testing.T) {
	var got service.CategoryPromotionInput
	svc := &mockPromotionService{
		setFn: func(_ context.Context, in service.CategoryPromotionInput) (database.CategoryPromotion, error) {
			got = in
			return database.CategoryPromotion{Category: in.Category}, nil
		},
	}

	rr := doJSON(t, setupPromotionRouter(svc), "PUT", "/promotions/categories/Tacos", map[string]interface{}{
		"promotion_type":  "percentage",
		"promotion_value": "10",
		"active":          false,
	})
	assertStatus(t, rr, http.StatusOK)
	if got.Active {
		t.Error("active: got true, want false")
	}
}

func TestPromotionSet_Invalid(t *testing.T) {
	svc := &mockPromotionService{
		setFn: func(_ context.Context, _ service.CategoryPromotionInput) (database.CategoryPromotion, error) {
			return database.CategoryPromotion{}, validationErr("percentage promotion must be <= 100")
		},
	}

	rr := doJSON(t, setupPromotionRouter(svc), "PUT", "/promotions/categories/Tacos", map[string]interface{}{
		"promotion_type":  "percentage",
		"promotion_value": "150",
	})
	assertStatus(t, rr, http.StatusBadRequest)
	assertError(t, rr, "percentage promotion must be <= 100")
}

func TestPromotionDelete(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", service.ErrCategoryPromotionNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			svc := &mockPromotionService{
				deleteFn: func(_ context.Context, category string) error {
					got = category
					return tt.err
				},
			}

			rr := doJSON(t, setupPromotionRouter(svc), "DELETE", "/promotions/categories/Bebidas", nil)
			assertStatus(t, rr, tt.want)
			if got != "Bebidas" {
				t.Errorf("category: got %q", got)
			}
		})
	}
}
