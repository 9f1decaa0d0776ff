package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, description, price, image_url, category, available,
	promotion_type, promotion_value, promotion_active, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...interface{}) error }) (MenuItem, error) {
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.Category,
		&i.Available,
		&i.PromotionType,
		&i.PromotionValue,
		&i.PromotionActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listMenuItems(ctx context.Context, query string, args ...interface{}) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		i, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMenuItems = `SELECT ` + menuItemColumns + ` FROM menu_items
ORDER BY category NULLS LAST, name`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	return q.listMenuItems(ctx, listMenuItems)
}

const listAvailableMenuItems = `SELECT ` + menuItemColumns + ` FROM menu_items
WHERE available = true
ORDER BY category NULLS LAST, name`

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItem, error) {
	return q.listMenuItems(ctx, listAvailableMenuItems)
}

const listMenuItemsByCategory = `SELECT ` + menuItemColumns + ` FROM menu_items
WHERE category = $1
ORDER BY name`

func (q *Queries) ListMenuItemsByCategory(ctx context.Context, category pgtype.Text) ([]MenuItem, error) {
	return q.listMenuItems(ctx, listMenuItemsByCategory, category)
}

const getMenuItem = `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	return scanMenuItem(q.db.QueryRow(ctx, getMenuItem, id))
}

const createMenuItem = `INSERT INTO menu_items (
	name, description, price, image_url, category, available,
	promotion_type, promotion_value, promotion_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + menuItemColumns

type CreateMenuItemParams struct {
	Name            string
	Description     pgtype.Text
	Price           pgtype.Numeric
	ImageUrl        pgtype.Text
	Category        pgtype.Text
	Available       bool
	PromotionType   pgtype.Text
	PromotionValue  pgtype.Numeric
	PromotionActive bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.Category,
		arg.Available,
		arg.PromotionType,
		arg.PromotionValue,
		arg.PromotionActive,
	)
	return scanMenuItem(row)
}

const updateMenuItem = `UPDATE menu_items SET
	name = $2,
	description = $3,
	price = $4,
	image_url = $5,
	category = $6,
	available = $7,
	promotion_type = $8,
	promotion_value = $9,
	promotion_active = $10,
	updated_at = now()
WHERE id = $1
RETURNING ` + menuItemColumns

type UpdateMenuItemParams struct {
	ID              uuid.UUID
	Name            string
	Description     pgtype.Text
	Price           pgtype.Numeric
	ImageUrl        pgtype.Text
	Category        pgtype.Text
	Available       bool
	PromotionType   pgtype.Text
	PromotionValue  pgtype.Numeric
	PromotionActive bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.Category,
		arg.Available,
		arg.PromotionType,
		arg.PromotionValue,
		arg.PromotionActive,
	)
	return scanMenuItem(row)
}

const updateMenuItemCategory = `UPDATE menu_items SET category = $2, updated_at = now()
WHERE id = $1`

type UpdateMenuItemCategoryParams struct {
	ID       uuid.UUID
	Category pgtype.Text
}

func (q *Queries) UpdateMenuItemCategory(ctx context.Context, arg UpdateMenuItemCategoryParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateMenuItemCategory, arg.ID, arg.Category)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteMenuItem = `DELETE FROM menu_items WHERE id = $1`

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteMenuItem, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listMenuCategories = `SELECT DISTINCT category FROM menu_items
WHERE category IS NOT NULL AND category <> ''
ORDER BY category`

func (q *Queries) ListMenuCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listMenuCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const categoryPromotionColumns = `category, promotion_type, promotion_value, active, updated_at`

func scanCategoryPromotion(row interface{ Scan(...interface{}) error }) (CategoryPromotion, error) {
	var i CategoryPromotion
	err := row.Scan(
		&i.Category,
		&i.PromotionType,
		&i.PromotionValue,
		&i.Active,
		&i.UpdatedAt,
	)
	return i, err
}

const listCategoryPromotions = `SELECT ` + categoryPromotionColumns + ` FROM category_promotions
ORDER BY category`

func (q *Queries) ListCategoryPromotions(ctx context.Context) ([]CategoryPromotion, error) {
	rows, err := q.db.Query(ctx, listCategoryPromotions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CategoryPromotion{}
	for rows.Next() {
		i, err := scanCategoryPromotion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertCategoryPromotion = `INSERT INTO category_promotions (category, promotion_type, promotion_value, active, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (category) DO UPDATE SET
	promotion_type = EXCLUDED.promotion_type,
	promotion_value = EXCLUDED.promotion_value,
	active = EXCLUDED.active,
	updated_at = EXCLUDED.updated_at
RETURNING ` + categoryPromotionColumns

type UpsertCategoryPromotionParams struct {
	Category       string
	PromotionType  string
	PromotionValue pgtype.Numeric
	Active         bool
	UpdatedAt      time.Time
}

func (q *Queries) UpsertCategoryPromotion(ctx context.Context, arg UpsertCategoryPromotionParams) (CategoryPromotion, error) {
	row := q.db.QueryRow(ctx, upsertCategoryPromotion,
		arg.Category,
		arg.PromotionType,
		arg.PromotionValue,
		arg.Active,
		arg.UpdatedAt,
	)
	return scanCategoryPromotion(row)
}

const deleteCategoryPromotion = `DELETE FROM category_promotions WHERE category = $1`

func (q *Queries) DeleteCategoryPromotion(ctx context.Context, category string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCategoryPromotion, category)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
