// Package report aggregates completed orders into sales reports.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/shopspring/decimal"
)

// Uncategorized is the category of items that match no catalog entry.
const Uncategorized = "Sin Categoría"

// Order is a completed order as read for reporting.
type Order struct {
	CreatedAt time.Time
	Total     decimal.Decimal
	Completed bool
	Items     []Item
}

// Item is an order line as stored. Name may carry a trailing "(note)".
type Item struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// CatalogEntry is a menu item name with its category.
type CatalogEntry struct {
	Name     string
	Category string
}

// Summary is the headline of a report.
type Summary struct {
	OrdersCount   int
	TotalRevenue  decimal.Decimal
	AverageTicket decimal.Decimal
}

// Day is the sales of one business day.
type Day struct {
	Date         time.Time
	OrdersCount  int
	DailyRevenue decimal.Decimal
}

// ItemSales is the sales of one item within a category.
type ItemSales struct {
	Name     string
	Quantity int
	Revenue  decimal.Decimal
}

// CategorySales groups item sales under a category.
type CategorySales struct {
	Category string
	Quantity int
	Revenue  decimal.Decimal
	Items    []ItemSales
}

// Report is the full sales report.
type Report struct {
	Summary    Summary
	DailySales []Day
	TopItems   []CategorySales
}

// Build aggregates orders. Orders not marked completed are ignored; the
// caller is expected to have filtered them to the requested range already.
func Build(orders []Order, catalog []CatalogEntry, loc *time.Location) Report {
	completed := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Completed {
			completed = append(completed, o)
		}
	}

	return Report{
		Summary:    Summarize(completed),
		DailySales: DailySales(completed, loc),
		TopItems:   TopItems(completed, NewCatalog(catalog)),
	}
}

// Summarize counts orders and sums and averages their totals.
func Summarize(orders []Order) Summary {
	s := Summary{TotalRevenue: decimal.Zero, AverageTicket: decimal.Zero}
	for _, o := range orders {
		s.OrdersCount++
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
	}
	if s.OrdersCount > 0 {
		s.AverageTicket = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.OrdersCount))).Round(2)
	}
	s.TotalRevenue = s.TotalRevenue.Round(2)
	return s
}

// DailySales buckets orders by the business day of their creation time and
// returns the non-empty days in ascending order.
func DailySales(orders []Order, loc *time.Location) []Day {
	byDay := make(map[string]*Day)
	for _, o := range orders {
		day := BusinessDay(o.CreatedAt, loc)
		key := day.Format(DateLayout)
		d, ok := byDay[key]
		if !ok {
			d = &Day{Date: day, DailyRevenue: decimal.Zero}
			byDay[key] = d
		}
		d.OrdersCount++
		d.DailyRevenue = d.DailyRevenue.Add(o.Total)
	}

	days := make([]Day, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// Catalog resolves stored item names to categories.
type Catalog struct {
	byName map[string]CatalogEntry
}

// NewCatalog indexes entries by lower-cased name. The first entry wins
// when names repeat.
func NewCatalog(entries []CatalogEntry) *Catalog {
	c := &Catalog{byName: make(map[string]CatalogEntry, len(entries))}
	for _, e := range entries {
		key := normalize(e.Name)
		if _, ok := c.byName[key]; !ok {
			c.byName[key] = e
		}
	}
	return c
}

// Attribute returns the category and canonical name for a stored item name.
// The full name is tried first, then the name without its trailing
// parenthetical note. Unmatched items fall into Uncategorized under their
// note-less name.
func (c *Catalog) Attribute(stored string) (category, name string) {
	if e, ok := c.byName[normalize(stored)]; ok {
		return categoryOf(e), e.Name
	}
	base, _ := itemcodec.SplitNote(stored)
	if e, ok := c.byName[normalize(base)]; ok {
		return categoryOf(e), e.Name
	}
	return Uncategorized, base
}

func categoryOf(e CatalogEntry) string {
	if strings.TrimSpace(e.Category) == "" {
		return Uncategorized
	}
	return e.Category
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TopItems attributes every item line to a category and ranks the result:
// categories by revenue, items within a category by quantity.
func TopItems(orders []Order, catalog *Catalog) []CategorySales {
	type key struct{ category, name string }
	items := make(map[key]*ItemSales)
	cats := make(map[string]*CategorySales)

	for _, o := range orders {
		for _, it := range o.Items {
			category, name := catalog.Attribute(it.Name)
			revenue := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))

			k := key{category, name}
			is, ok := items[k]
			if !ok {
				is = &ItemSales{Name: name, Revenue: decimal.Zero}
				items[k] = is
			}
			is.Quantity += it.Quantity
			is.Revenue = is.Revenue.Add(revenue)

			cs, ok := cats[category]
			if !ok {
				cs = &CategorySales{Category: category, Revenue: decimal.Zero}
				cats[category] = cs
			}
			cs.Quantity += it.Quantity
			cs.Revenue = cs.Revenue.Add(revenue)
		}
	}

	for k, is := range items {
		cs := cats[k.category]
		cs.Items = append(cs.Items, *is)
	}

	out := make([]CategorySales, 0, len(cats))
	for _, cs := range cats {
		sort.Slice(cs.Items, func(i, j int) bool {
			if cs.Items[i].Quantity != cs.Items[j].Quantity {
				return cs.Items[i].Quantity > cs.Items[j].Quantity
			}
			return cs.Items[i].Name < cs.Items[j].Name
		})
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Revenue.Cmp(out[j].Revenue); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
