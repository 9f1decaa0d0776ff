package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
	"github.com/jairsl2206/restaurant-sub000/internal/promotion"
)

// mockMenuStore implements MenuStore with function fields. Unset fields
// return zero values.
type mockMenuStore struct {
	items          []database.MenuItem
	promos         []database.CategoryPromotion
	getItem        func(id uuid.UUID) (database.MenuItem, error)
	createItem     func(arg database.CreateMenuItemParams) (database.MenuItem, error)
	updateItem     func(arg database.UpdateMenuItemParams) (database.MenuItem, error)
	updateCategory func(arg database.UpdateMenuItemCategoryParams) (int64, error)
	deleteItem     func(id uuid.UUID) (int64, error)
	upsertPromo    func(arg database.UpsertCategoryPromotionParams) (database.CategoryPromotion, error)
	deletePromo    func(category string) (int64, error)
	listErr        error
}

func (m *mockMenuStore) ListMenuItems(context.Context) ([]database.MenuItem, error) {
	return m.items, m.listErr
}

func (m *mockMenuStore) ListAvailableMenuItems(context.Context) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, it := range m.items {
		if it.Available {
			out = append(out, it)
		}
	}
	return out, m.listErr
}

func (m *mockMenuStore) ListMenuItemsByCategory(_ context.Context, category pgtype.Text) ([]database.MenuItem, error) {
	var out []database.MenuItem
	for _, it := range m.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, m.listErr
}

func (m *mockMenuStore) GetMenuItem(_ context.Context, id uuid.UUID) (database.MenuItem, error) {
	return m.getItem(id)
}

func (m *mockMenuStore) CreateMenuItem(_ context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error) {
	return m.createItem(arg)
}

func (m *mockMenuStore) UpdateMenuItem(_ context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error) {
	return m.updateItem(arg)
}

func (m *mockMenuStore) UpdateMenuItemCategory(_ context.Context, arg database.UpdateMenuItemCategoryParams) (int64, error) {
	return m.updateCategory(arg)
}

func (m *mockMenuStore) DeleteMenuItem(_ context.Context, id uuid.UUID) (int64, error) {
	return m.deleteItem(id)
}

func (m *mockMenuStore) ListMenuCategories(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, it := range m.items {
		if it.Category.Valid && !seen[it.Category.String] {
			seen[it.Category.String] = true
			out = append(out, it.Category.String)
		}
	}
	return out, nil
}

func (m *mockMenuStore) ListCategoryPromotions(context.Context) ([]database.CategoryPromotion, error) {
	return m.promos, nil
}

func (m *mockMenuStore) UpsertCategoryPromotion(_ context.Context, arg database.UpsertCategoryPromotionParams) (database.CategoryPromotion, error) {
	return m.upsertPromo(arg)
}

func (m *mockMenuStore) DeleteCategoryPromotion(_ context.Context, category string) (int64, error) {
	return m.deletePromo(category)
}

func menuItem(name, price, category string) database.MenuItem {
	it := database.MenuItem{ID: uuid.New(), Name: name, Price: makeNumeric(price), Available: true}
	if category != "" {
		it.Category = pgtype.Text{String: category, Valid: true}
	}
	return it
}

func TestMenuList_ResolvesPromotions(t *testing.T) {
	withItemPromo := menuItem("Tacos", "100", "Comida")
	withItemPromo.PromotionType = pgtype.Text{String: "fixed", Valid: true}
	withItemPromo.PromotionValue = makeNumeric("15")
	withItemPromo.PromotionActive = true

	store := &mockMenuStore{
		items: []database.MenuItem{
			withItemPromo,
			menuItem("Torta", "80", "Comida"),
			menuItem("Agua", "30", "Bebidas"),
		},
		promos: []database.CategoryPromotion{
			{Category: "Comida", PromotionType: "percentage", PromotionValue: makeNumeric("10"), Active: true},
			{Category: "Bebidas", PromotionType: "percentage", PromotionValue: makeNumeric("50"), Active: false},
		},
	}
	svc := NewMenuService(store)

	got, err := svc.List(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}

	// item-level promotion wins over the category one
	if !got[0].Price.FinalPrice.Equal(d("85")) || got[0].Price.PromotionType != promotion.TypeFixed {
		t.Errorf("tacos: got %+v", got[0].Price)
	}
	if !got[1].Price.FinalPrice.Equal(d("72")) || !got[1].Price.DiscountAmount.Equal(d("8")) {
		t.Errorf("torta: got %+v", got[1].Price)
	}
	if got[2].Price.HasPromotion || !got[2].Price.FinalPrice.Equal(d("30")) {
		t.Errorf("inactive category promotion applied: %+v", got[2].Price)
	}
}

func TestMenuList_AvailableOnly(t *testing.T) {
	hidden := menuItem("Pozole", "120", "Comida")
	hidden.Available = false
	store := &mockMenuStore{items: []database.MenuItem{menuItem("Tacos", "100", ""), hidden}}

	got, err := NewMenuService(store).List(context.Background(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Item.Name != "Tacos" {
		t.Errorf("expected only available items, got %d", len(got))
	}
}

func TestMenuList_DatabaseError(t *testing.T) {
	store := &mockMenuStore{listErr: errBoom}

	_, err := NewMenuService(store).List(context.Background(), false)
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}
}

func TestMenuGet_NotFound(t *testing.T) {
	store := &mockMenuStore{
		getItem: func(uuid.UUID) (database.MenuItem, error) { return database.MenuItem{}, pgx.ErrNoRows },
	}

	_, err := NewMenuService(store).Get(context.Background(), uuid.New())
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != "menu item not found" {
		t.Errorf("message: got %q", err.Error())
	}
}

func TestMenuCreate(t *testing.T) {
	var captured database.CreateMenuItemParams
	store := &mockMenuStore{
		createItem: func(arg database.CreateMenuItemParams) (database.MenuItem, error) {
			captured = arg
			return database.MenuItem{ID: uuid.New(), Name: arg.Name}, nil
		},
	}

	_, err := NewMenuService(store).Create(context.Background(), MenuItemInput{
		Name:      "  Tacos ",
		Price:     d("45.5"),
		Category:  " Comida ",
		Available: true,
		Promotion: &promotion.Promotion{Type: promotion.TypePercentage, Value: d("10"), Active: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Name != "Tacos" || captured.Category.String != "Comida" {
		t.Errorf("expected trimmed fields, got %q/%q", captured.Name, captured.Category.String)
	}
	if captured.Description.Valid {
		t.Error("empty description should be NULL")
	}
	if captured.PromotionType.String != "percentage" || !captured.PromotionActive {
		t.Errorf("promotion columns: %+v", captured.PromotionType)
	}
}

func TestMenuCreate_Validation(t *testing.T) {
	svc := NewMenuService(&mockMenuStore{})
	tests := []struct {
		name string
		in   MenuItemInput
	}{
		{"empty name", MenuItemInput{Name: " ", Price: d("1")}},
		{"negative price", MenuItemInput{Name: "A", Price: d("-1")}},
		{"sub-cent price", MenuItemInput{Name: "A", Price: d("9.999")}},
		{"parenthetical name", MenuItemInput{Name: "Agua (1L)", Price: d("20")}},
		{"comma in name", MenuItemInput{Name: "Pizza, grande", Price: d("150")}},
		{"bad promotion type", MenuItemInput{Name: "A", Price: d("1"), Promotion: &promotion.Promotion{Type: "bogo", Value: d("1")}}},
		{"percentage over 100", MenuItemInput{Name: "A", Price: d("1"), Promotion: &promotion.Promotion{Type: promotion.TypePercentage, Value: d("150")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, order.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestMenuUpdate_NotFound(t *testing.T) {
	store := &mockMenuStore{
		updateItem: func(database.UpdateMenuItemParams) (database.MenuItem, error) {
			return database.MenuItem{}, pgx.ErrNoRows
		},
	}

	_, err := NewMenuService(store).Update(context.Background(), uuid.New(), MenuItemInput{Name: "A", Price: d("1")})
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMenuDelete(t *testing.T) {
	known := uuid.New()
	store := &mockMenuStore{
		deleteItem: func(id uuid.UUID) (int64, error) {
			if id == known {
				return 1, nil
			}
			return 0, nil
		},
	}
	svc := NewMenuService(store)

	if err := svc.Delete(context.Background(), known); err != nil {
		t.Errorf("delete known: %v", err)
	}
	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, order.ErrNotFound) {
		t.Errorf("delete unknown: got %v", err)
	}
}

func TestRenameCategory_PartialFailure(t *testing.T) {
	ok1 := menuItem("Tacos", "10", "Comida")
	bad := menuItem("Torta", "10", "Comida")
	ok2 := menuItem("Pozole", "10", "Comida")
	other := menuItem("Agua", "10", "Bebidas")

	var moved []uuid.UUID
	store := &mockMenuStore{
		items: []database.MenuItem{ok1, bad, ok2, other},
		updateCategory: func(arg database.UpdateMenuItemCategoryParams) (int64, error) {
			if arg.ID == bad.ID {
				return 0, errBoom
			}
			if arg.Category.String != "Platillos" {
				t.Errorf("unexpected target category %q", arg.Category.String)
			}
			moved = append(moved, arg.ID)
			return 1, nil
		},
	}

	res, err := NewMenuService(store).RenameCategory(context.Background(), "Comida", " Platillos ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Updated != 2 || len(moved) != 2 {
		t.Errorf("updated: got %d", res.Updated)
	}
	if len(res.Failed) != 1 || res.Failed[0].ID != bad.ID || res.Failed[0].Name != "Torta" {
		t.Errorf("failed: got %+v", res.Failed)
	}
}

func TestRenameCategory_RequiresNames(t *testing.T) {
	_, err := NewMenuService(&mockMenuStore{}).RenameCategory(context.Background(), "Comida", "")
	if !errors.Is(err, order.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetCategoryPromotion(t *testing.T) {
	var captured database.UpsertCategoryPromotionParams
	store := &mockMenuStore{
		upsertPromo: func(arg database.UpsertCategoryPromotionParams) (database.CategoryPromotion, error) {
			captured = arg
			return database.CategoryPromotion{Category: arg.Category, PromotionType: arg.PromotionType, Active: arg.Active}, nil
		},
	}
	svc := NewMenuService(store)

	cp, err := svc.SetCategoryPromotion(context.Background(), CategoryPromotionInput{
		Category: " Bebidas ", Type: "fixed", Value: d("5"), Active: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cp.Category != "Bebidas" || captured.PromotionType != "fixed" || captured.UpdatedAt.IsZero() {
		t.Errorf("unexpected upsert: %+v", captured)
	}

	_, err = svc.SetCategoryPromotion(context.Background(), CategoryPromotionInput{Category: "Bebidas", Type: "bogo", Value: d("5")})
	if !errors.Is(err, order.ErrValidation) {
		t.Errorf("bad type: got %v", err)
	}
}

func TestDeleteCategoryPromotion_NotFound(t *testing.T) {
	store := &mockMenuStore{deletePromo: func(string) (int64, error) { return 0, nil }}

	err := NewMenuService(store).DeleteCategoryPromotion(context.Background(), "Postres")
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
