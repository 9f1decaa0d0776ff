// Package order holds the order aggregate: its items, total, edit snapshot
// and status lifecycle. It has no persistence; the service layer loads an
// Order, calls one of its methods and writes the result back.
package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/shopspring/decimal"
)

// Item is a priced order line. Price is the menu price captured when the
// line was added, not a reference to the menu.
type Item struct {
	Name     string
	Note     string
	Quantity int
	Price    decimal.Decimal
}

// Subtotal is Price * Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer is the contact of a delivery or pickup order.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Order is the order aggregate.
type Order struct {
	ID          uuid.UUID
	TableNumber int // 0 for delivery and pickup
	Status      Status
	Total       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsDelivery  bool
	IsPickup    bool
	Customer    *Customer

	// IsUpdated and OriginalItems move together: the snapshot is taken on
	// the first edit and both are cleared when the order reaches READY.
	IsUpdated     bool
	OriginalItems *string

	Items []Item
}

// NewParams is the input for New.
type NewParams struct {
	TableNumber int
	Customer    *Customer
	IsDelivery  bool
	IsPickup    bool
	Items       []Item
}

// New validates params and returns a COOKING order.
func New(p NewParams, now time.Time) (*Order, error) {
	if err := validateItems(p.Items); err != nil {
		return nil, err
	}

	o := &Order{
		ID:         uuid.New(),
		Status:     StatusCooking,
		CreatedAt:  now,
		UpdatedAt:  now,
		IsDelivery: p.IsDelivery,
		IsPickup:   p.IsPickup,
		Items:      cloneItems(p.Items),
	}

	if o.Kind() == KindDineIn {
		if p.TableNumber <= 0 {
			return nil, ErrMissingTable
		}
		o.TableNumber = p.TableNumber
	} else {
		c := p.Customer
		if c == nil || strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
			return nil, ErrMissingCustomer
		}
		o.Customer = &Customer{
			Name:    strings.TrimSpace(c.Name),
			Phone:   strings.TrimSpace(c.Phone),
			Address: strings.TrimSpace(c.Address),
		}
	}

	o.RecomputeTotal()
	return o, nil
}

// Kind returns the transition graph the order follows. Pickup wins over
// delivery when both flags are set.
func (o *Order) Kind() Kind {
	switch {
	case o.IsPickup:
		return KindPickup
	case o.IsDelivery:
		return KindDelivery
	default:
		return KindDineIn
	}
}

// RecomputeTotal sets Total to the sum of the item subtotals.
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	o.Total = total
}

// EncodedItems returns the items in the item-list encoding.
func (o *Order) EncodedItems() string {
	return EncodeItems(o.Items)
}

// ReplaceItems swaps the whole item list. The first edit since creation (or
// since the last acknowledgement) stores the previous items as the snapshot;
// later edits keep that snapshot.
func (o *Order) ReplaceItems(items []Item, now time.Time) error {
	if o.Status.Terminal() {
		return ErrOrderClosed
	}
	if err := validateItems(items); err != nil {
		return err
	}

	if !o.IsUpdated {
		snapshot := o.EncodedItems()
		o.OriginalItems = &snapshot
		o.IsUpdated = true
	}

	o.Items = cloneItems(items)
	o.RecomputeTotal()
	o.UpdatedAt = now
	return nil
}

// ChangeStatus moves the order to status to. Entering READY acknowledges any
// pending edit.
func (o *Order) ChangeStatus(to Status, now time.Time) error {
	if err := CanTransition(o.Kind(), o.Status, to); err != nil {
		return err
	}

	o.Status = to
	if to == StatusReady {
		o.acknowledge()
	}
	o.UpdatedAt = now
	return nil
}

// Advance moves the order to the next status of its graph.
func (o *Order) Advance(now time.Time) error {
	next, ok := Next(o.Kind(), o.Status)
	if !ok {
		return &TransitionError{From: o.Status}
	}
	return o.ChangeStatus(next, now)
}

// Cancel is ChangeStatus(StatusCancelled).
func (o *Order) Cancel(now time.Time) error {
	return o.ChangeStatus(StatusCancelled, now)
}

func (o *Order) acknowledge() {
	o.IsUpdated = false
	o.OriginalItems = nil
}

func validateItems(items []Item) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			return itemError(i, "name is required")
		}
		if !itemcodec.ValidName(it.Name) {
			return itemError(i, "name must not contain , ( ) [ or ]")
		}
		if !itemcodec.ValidNote(it.Note) {
			return itemError(i, "note must not contain ( ) [ or ]")
		}
		if it.Quantity <= 0 {
			return itemError(i, "quantity must be > 0")
		}
		if it.Price.IsNegative() {
			return itemError(i, "price must be >= 0")
		}
		if !it.Price.Equal(it.Price.Round(2)) {
			return itemError(i, "price must have at most 2 decimal places")
		}
	}
	return nil
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		it.Note = strings.TrimSpace(it.Note)
		out[i] = it
	}
	return out
}

// Entries returns the items as codec entries.
func (o *Order) Entries() []itemcodec.Entry {
	return toEntries(o.Items)
}

// EncodeItems writes items in the item-list encoding.
func EncodeItems(items []Item) string {
	return itemcodec.Encode(toEntries(items))
}

func toEntries(items []Item) []itemcodec.Entry {
	entries := make([]itemcodec.Entry, len(items))
	for i, it := range items {
		entries[i] = itemcodec.Entry{
			Name:     it.Name,
			Note:     it.Note,
			Quantity: it.Quantity,
			Price:    it.Price,
			HasPrice: true,
		}
	}
	return entries
}

// DecodeItems reads an item list back into order items.
func DecodeItems(encoded string) []Item {
	entries := itemcodec.Parse(encoded)
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Name: e.Name, Note: e.Note, Quantity: e.Quantity, Price: e.Price}
	}
	return items
}
