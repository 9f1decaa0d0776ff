// Package promotion computes the price a menu item sells for once item or
// category promotions are applied.
package promotion

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Type is how a promotion value is applied.
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// ErrInvalidType is returned by ParseType.
var ErrInvalidType = errors.New("promotion type must be percentage or fixed")

// ParseType validates a promotion type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypePercentage, TypeFixed:
		return t, nil
	}
	return "", ErrInvalidType
}

// Promotion is a discount definition.
type Promotion struct {
	Type   Type
	Value  decimal.Decimal
	Active bool
}

func (p *Promotion) usable() bool {
	return p != nil && p.Active && p.Type != "" && p.Value.IsPositive()
}

// Item is the part of a menu item the resolver needs.
type Item struct {
	Price     decimal.Decimal
	Category  string
	Promotion *Promotion
}

// CategoryPromotion applies to every item of Category without an active
// item-level promotion.
type CategoryPromotion struct {
	Category  string
	Promotion Promotion
}

// Result is the resolved price of one item.
type Result struct {
	FinalPrice     decimal.Decimal
	HasPromotion   bool
	PromotionType  Type
	PromotionValue decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Resolve prices item. An active item-level promotion always wins; otherwise
// the first active promotion whose category equals item.Category applies.
func Resolve(item Item, categoryPromos []CategoryPromotion) Result {
	price := item.Price.Round(2)

	if item.Promotion.usable() {
		return apply(price, *item.Promotion)
	}

	if item.Category != "" {
		for _, cp := range categoryPromos {
			if cp.Category == item.Category && cp.Promotion.usable() {
				return apply(price, cp.Promotion)
			}
		}
	}

	return Result{FinalPrice: price, DiscountAmount: decimal.Zero, PromotionValue: decimal.Zero}
}

func apply(price decimal.Decimal, p Promotion) Result {
	var discount decimal.Decimal
	switch p.Type {
	case TypePercentage:
		discount = price.Mul(p.Value).Div(decimal.NewFromInt(100))
	case TypeFixed:
		discount = decimal.Min(price, p.Value)
	default:
		return Result{FinalPrice: price, DiscountAmount: decimal.Zero, PromotionValue: decimal.Zero}
	}
	discount = decimal.Min(discount, price).Round(2)

	final := price.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Result{
		FinalPrice:     final.Round(2),
		HasPromotion:   true,
		PromotionType:  p.Type,
		PromotionValue: p.Value,
		DiscountAmount: discount,
	}
}
