package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
	ID              uuid.UUID
	TableNumber     pgtype.Int4
	Status          string
	Total           pgtype.Numeric
	IsDelivery      bool
	IsPickup        bool
	CustomerName    pgtype.Text
	CustomerPhone   pgtype.Text
	CustomerAddress pgtype.Text
	IsUpdated       bool
	OriginalItems   pgtype.Text
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID       int64
	OrderID  uuid.UUID
	Position int32
	Name     string
	Note     string
	Quantity int32
	Price    pgtype.Numeric
}

type MenuItem struct {
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
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CategoryPromotion struct {
	Category       string
	PromotionType  string
	PromotionValue pgtype.Numeric
	Active         bool
	UpdatedAt      time.Time
}

type User struct {
	ID             uuid.UUID
	Username       string
	HashedPassword string
	FullName       string
	Role           string
	CreatedAt      time.Time
}

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
