package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
	"github.com/jairsl2206/restaurant-sub000/internal/promotion"
)

// MenuStore defines the DB methods needed by the menu service.
// Satisfied by *database.Queries.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListMenuItemsByCategory(ctx context.Context, category pgtype.Text) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItemCategory(ctx context.Context, arg database.UpdateMenuItemCategoryParams) (int64, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error)
	ListMenuCategories(ctx context.Context) ([]string, error)
	ListCategoryPromotions(ctx context.Context) ([]database.CategoryPromotion, error)
	UpsertCategoryPromotion(ctx context.Context, arg database.UpsertCategoryPromotionParams) (database.CategoryPromotion, error)
	DeleteCategoryPromotion(ctx context.Context, category string) (int64, error)
}

var (
	ErrMenuItemNotFound          = &order.NotFoundError{Resource: "menu item"}
	ErrCategoryPromotionNotFound = &order.NotFoundError{Resource: "category promotion"}
)

// PricedMenuItem is a menu item with its promotion resolved.
type PricedMenuItem struct {
	Item  database.MenuItem
	Price promotion.Result
}

// MenuItemInput is the editable part of a menu item.
type MenuItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	Available   bool
	Promotion   *promotion.Promotion
}

// CategoryPromotionInput sets the promotion of one category.
type CategoryPromotionInput struct {
	Category string
	Type     string
	Value    decimal.Decimal
	Active   bool
}

// RenameFailure is one item a category rename could not move.
type RenameFailure struct {
	ID    uuid.UUID
	Name  string
	Error string
}

// RenameResult reports a best-effort category rename.
type RenameResult struct {
	Updated int
	Failed  []RenameFailure
}

// MenuService manages menu items and category promotions.
type MenuService struct {
	store MenuStore
	now   func() time.Time
}

// NewMenuService creates a new MenuService.
func NewMenuService(store MenuStore) *MenuService {
	return &MenuService{store: store, now: time.Now}
}

// List returns menu items with their final prices.
func (s *MenuService) List(ctx context.Context, availableOnly bool) ([]PricedMenuItem, error) {
	list := s.store.ListMenuItems
	if availableOnly {
		list = s.store.ListAvailableMenuItems
	}
	items, err := list(ctx)
	if err != nil {
		return nil, dbError("list menu items", err)
	}
	promos, err := s.activeCategoryPromotions(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PricedMenuItem, len(items))
	for i, it := range items {
		out[i] = PricedMenuItem{Item: it, Price: promotion.Resolve(promotionItem(it), promos)}
	}
	return out, nil
}

// Get returns one menu item with its final price.
func (s *MenuService) Get(ctx context.Context, id uuid.UUID) (PricedMenuItem, error) {
	it, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PricedMenuItem{}, ErrMenuItemNotFound
		}
		return PricedMenuItem{}, dbError("get menu item", err)
	}
	return s.priced(ctx, it)
}

// Create adds a menu item.
func (s *MenuService) Create(ctx context.Context, in MenuItemInput) (PricedMenuItem, error) {
	if err := validateMenuItem(&in); err != nil {
		return PricedMenuItem{}, err
	}
	promoType, promoValue, promoActive := promotionColumns(in.Promotion)
	it, err := s.store.CreateMenuItem(ctx, database.CreateMenuItemParams{
		Name:            in.Name,
		Description:     text(in.Description),
		Price:           decimalToNumeric(in.Price),
		ImageUrl:        text(in.ImageURL),
		Category:        text(in.Category),
		Available:       in.Available,
		PromotionType:   promoType,
		PromotionValue:  promoValue,
		PromotionActive: promoActive,
	})
	if err != nil {
		return PricedMenuItem{}, dbError("create menu item", err)
	}
	return s.priced(ctx, it)
}

// Update replaces the editable fields of a menu item.
func (s *MenuService) Update(ctx context.Context, id uuid.UUID, in MenuItemInput) (PricedMenuItem, error) {
	if err := validateMenuItem(&in); err != nil {
		return PricedMenuItem{}, err
	}
	promoType, promoValue, promoActive := promotionColumns(in.Promotion)
	it, err := s.store.UpdateMenuItem(ctx, database.UpdateMenuItemParams{
		ID:              id,
		Name:            in.Name,
		Description:     text(in.Description),
		Price:           decimalToNumeric(in.Price),
		ImageUrl:        text(in.ImageURL),
		Category:        text(in.Category),
		Available:       in.Available,
		PromotionType:   promoType,
		PromotionValue:  promoValue,
		PromotionActive: promoActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PricedMenuItem{}, ErrMenuItemNotFound
		}
		return PricedMenuItem{}, dbError("update menu item", err)
	}
	return s.priced(ctx, it)
}

// Delete removes a menu item. Past orders keep their copied names and prices.
func (s *MenuService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.DeleteMenuItem(ctx, id)
	if err != nil {
		return dbError("delete menu item", err)
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

// Categories lists the distinct non-empty categories in use.
func (s *MenuService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.ListMenuCategories(ctx)
	if err != nil {
		return nil, dbError("list categories", err)
	}
	return cats, nil
}

// RenameCategory moves every item of category from to category to, one
// item at a time. Failures are collected and do not stop the rename.
func (s *MenuService) RenameCategory(ctx context.Context, from, to string) (RenameResult, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return RenameResult{}, &order.ValidationError{Msg: "category names are required"}
	}

	items, err := s.store.ListMenuItemsByCategory(ctx, text(from))
	if err != nil {
		return RenameResult{}, dbError("list menu items by category", err)
	}

	log := logger.FromCtx(ctx)
	res := RenameResult{Failed: []RenameFailure{}}
	for _, it := range items {
		n, err := s.store.UpdateMenuItemCategory(ctx, database.UpdateMenuItemCategoryParams{
			ID:       it.ID,
			Category: text(to),
		})
		if err == nil && n == 0 {
			err = pgx.ErrNoRows
		}
		if err != nil {
			log.Warn("rename category: item not moved",
				zap.String("item_id", it.ID.String()), zap.String("from", from), zap.String("to", to), zap.Error(err))
			res.Failed = append(res.Failed, RenameFailure{ID: it.ID, Name: it.Name, Error: "update failed"})
			continue
		}
		res.Updated++
	}

	log.Info("category renamed", zap.String("from", from), zap.String("to", to),
		zap.Int("updated", res.Updated), zap.Int("failed", len(res.Failed)))
	return res, nil
}

// CategoryPromotions lists every category promotion, active or not.
func (s *MenuService) CategoryPromotions(ctx context.Context) ([]database.CategoryPromotion, error) {
	promos, err := s.store.ListCategoryPromotions(ctx)
	if err != nil {
		return nil, dbError("list category promotions", err)
	}
	return promos, nil
}

// SetCategoryPromotion creates or replaces the promotion of a category.
func (s *MenuService) SetCategoryPromotion(ctx context.Context, in CategoryPromotionInput) (database.CategoryPromotion, error) {
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		return database.CategoryPromotion{}, &order.ValidationError{Msg: "category is required"}
	}
	t, err := promotion.ParseType(in.Type)
	if err != nil {
		return database.CategoryPromotion{}, &order.ValidationError{Msg: err.Error()}
	}
	if err := validatePromotionValue(t, in.Value); err != nil {
		return database.CategoryPromotion{}, err
	}

	cp, err := s.store.UpsertCategoryPromotion(ctx, database.UpsertCategoryPromotionParams{
		Category:       in.Category,
		PromotionType:  string(t),
		PromotionValue: decimalToNumeric(in.Value),
		Active:         in.Active,
		UpdatedAt:      s.now(),
	})
	if err != nil {
		return database.CategoryPromotion{}, dbError("upsert category promotion", err)
	}
	return cp, nil
}

// DeleteCategoryPromotion removes the promotion of a category.
func (s *MenuService) DeleteCategoryPromotion(ctx context.Context, category string) error {
	n, err := s.store.DeleteCategoryPromotion(ctx, category)
	if err != nil {
		return dbError("delete category promotion", err)
	}
	if n == 0 {
		return ErrCategoryPromotionNotFound
	}
	return nil
}

func (s *MenuService) priced(ctx context.Context, it database.MenuItem) (PricedMenuItem, error) {
	promos, err := s.activeCategoryPromotions(ctx)
	if err != nil {
		return PricedMenuItem{}, err
	}
	return PricedMenuItem{Item: it, Price: promotion.Resolve(promotionItem(it), promos)}, nil
}

func (s *MenuService) activeCategoryPromotions(ctx context.Context) ([]promotion.CategoryPromotion, error) {
	rows, err := s.store.ListCategoryPromotions(ctx)
	if err != nil {
		return nil, dbError("list category promotions", err)
	}
	out := make([]promotion.CategoryPromotion, 0, len(rows))
	for _, r := range rows {
		if !r.Active {
			continue
		}
		out = append(out, promotion.CategoryPromotion{
			Category: r.Category,
			Promotion: promotion.Promotion{
				Type:   promotion.Type(r.PromotionType),
				Value:  numericToDecimal(r.PromotionValue),
				Active: true,
			},
		})
	}
	return out, nil
}

func promotionItem(it database.MenuItem) promotion.Item {
	pi := promotion.Item{
		Price:    numericToDecimal(it.Price),
		Category: it.Category.String,
	}
	if it.PromotionType.Valid && it.PromotionValue.Valid {
		pi.Promotion = &promotion.Promotion{
			Type:   promotion.Type(it.PromotionType.String),
			Value:  numericToDecimal(it.PromotionValue),
			Active: it.PromotionActive,
		}
	}
	return pi
}

func promotionColumns(p *promotion.Promotion) (pgtype.Text, pgtype.Numeric, bool) {
	if p == nil || p.Type == "" {
		return pgtype.Text{}, pgtype.Numeric{}, false
	}
	return text(string(p.Type)), decimalToNumeric(p.Value), p.Active
}

func validateMenuItem(in *MenuItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return &order.ValidationError{Msg: "name is required"}
	}
	if !itemcodec.ValidName(in.Name) {
		return &order.ValidationError{Msg: "name must not contain , ( ) [ or ]"}
	}
	if in.Price.IsNegative() {
		return &order.ValidationError{Msg: "price must be >= 0"}
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return &order.ValidationError{Msg: "price must have at most 2 decimal places"}
	}
	if p := in.Promotion; p != nil && p.Type != "" {
		t, err := promotion.ParseType(string(p.Type))
		if err != nil {
			return &order.ValidationError{Msg: err.Error()}
		}
		if err := validatePromotionValue(t, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func validatePromotionValue(t promotion.Type, v decimal.Decimal) error {
	if v.IsNegative() {
		return &order.ValidationError{Msg: "promotion value must be >= 0"}
	}
	if t == promotion.TypePercentage && v.GreaterThan(decimal.NewFromInt(100)) {
		return &order.ValidationError{Msg: "percentage promotion must be <= 100"}
	}
	return nil
}
