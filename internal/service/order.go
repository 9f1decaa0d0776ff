package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jairsl2206/restaurant-sub000/internal/database"
	"github.com/jairsl2206/restaurant-sub000/internal/itemcodec"
	"github.com/jairsl2206/restaurant-sub000/internal/itemdiff"
	"github.com/jairsl2206/restaurant-sub000/internal/logger"
	"github.com/jairsl2206/restaurant-sub000/internal/order"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListActiveOrders(ctx context.Context) ([]database.Order, error)
	ListAllOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]database.Order, error)
	UpdateOrder(ctx context.Context, arg database.UpdateOrderParams) (database.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error)
	DeleteAllOrders(ctx context.Context) (int64, error)
	DeleteClosedOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]database.OrderItem, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewOrderStore func(db database.DBTX) OrderStore

// Sender queues a notification without waiting for it. Satisfied by
// *notify.Dispatcher.
type Sender interface {
	Send(ctx context.Context, recipient, message string)
}

// StaffDirectory resolves who gets staff notifications and how the
// restaurant signs its messages.
type StaffDirectory interface {
	StaffPhone(ctx context.Context) string
	RestaurantName(ctx context.Context) string
}

// OrderFilter selects which orders List returns.
type OrderFilter int

const (
	FilterActive OrderFilter = iota
	FilterAll
	FilterKitchen
)

// OrderService runs the order lifecycle against the database. Every
// mutation is one read-modify-write inside a transaction that holds the
// order row lock.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
	sender   Sender
	staff    StaffDirectory
	now      func() time.Time
}

// NewOrderService creates a new OrderService. sender and staff may be nil,
// which disables notifications.
func NewOrderService(pool TxBeginner, store OrderStore, newStore NewOrderStore, sender Sender, staff StaffDirectory) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		sender:   sender,
		staff:    staff,
		now:      time.Now,
	}
}

// Create validates and stores a new COOKING order.
func (s *OrderService) Create(ctx context.Context, p order.NewParams) (*order.Order, error) {
	o, err := order.New(p, s.now())
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(store OrderStore) error {
		if _, err := store.CreateOrder(ctx, createParams(o)); err != nil {
			return dbError("create order", err)
		}
		return insertItems(ctx, store, o)
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("kind", o.Kind().String()),
		zap.String("total", o.Total.StringFixed(2)),
	)
	if o.Kind() != order.KindDineIn {
		s.notifyStaff(ctx, newOrderMessage(o))
	}
	return o, nil
}

// Get loads one order with its items.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return s.load(ctx, s.store, id, false)
}

// List returns orders with their items. Active and kitchen lists are oldest
// first; the full list is newest first.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]*order.Order, error) {
	var (
		rows []database.Order
		err  error
	)
	switch filter {
	case FilterAll:
		rows, err = s.store.ListAllOrders(ctx)
	case FilterKitchen:
		rows, err = s.store.ListOrdersByStatus(ctx, string(order.StatusCooking))
	default:
		rows, err = s.store.ListActiveOrders(ctx)
	}
	if err != nil {
		return nil, dbError("list orders", err)
	}
	if len(rows) == 0 {
		return []*order.Order{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	items, err := s.store.ListOrderItemsByOrders(ctx, ids)
	if err != nil {
		return nil, dbError("list order items", err)
	}
	byOrder := make(map[uuid.UUID][]database.OrderItem, len(rows))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	out := make([]*order.Order, len(rows))
	for i, r := range rows {
		out[i] = toDomain(r, byOrder[r.ID])
	}
	return out, nil
}

// Units returns the order's items exploded into one unit per quantity.
func (s *OrderService) Units(ctx context.Context, id uuid.UUID) ([]itemcodec.Unit, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return itemcodec.Explode(o.Entries()), nil
}

// Changes diffs the pre-edit snapshot against the current items. An order
// without a pending edit has no changes.
func (s *OrderService) Changes(ctx context.Context, id uuid.UUID) (itemdiff.Result, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return itemdiff.Result{}, err
	}
	// Both sides go through the codec so they compare like for like.
	current := itemcodec.ExplodeToUnits(o.EncodedItems())
	if !o.IsUpdated || o.OriginalItems == nil {
		return itemdiff.CompareUnits(current, current), nil
	}
	return itemdiff.CompareUnits(itemcodec.ExplodeToUnits(*o.OriginalItems), current), nil
}

// ReplaceItems swaps the order's items, snapshotting the previous list on
// the first edit.
func (s *OrderService) ReplaceItems(ctx context.Context, id uuid.UUID, items []order.Item) (*order.Order, error) {
	return s.mutate(ctx, id, "replace items", func(o *order.Order, now time.Time) (bool, error) {
		return true, o.ReplaceItems(items, now)
	})
}

// ChangeStatus moves the order to status to.
func (s *OrderService) ChangeStatus(ctx context.Context, id uuid.UUID, to order.Status) (*order.Order, error) {
	o, err := s.mutate(ctx, id, "change status", func(o *order.Order, now time.Time) (bool, error) {
		return false, o.ChangeStatus(to, now)
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, o)
	return o, nil
}

// Advance moves the order to the next status of its graph.
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, err := s.mutate(ctx, id, "advance", func(o *order.Order, now time.Time) (bool, error) {
		return false, o.Advance(now)
	})
	if err != nil {
		return nil, err
	}
	s.notifyStatus(ctx, o)
	return o, nil
}

// Cancel moves the order to CANCELLED. Staff may cancel only while the
// order is COOKING; anyStatus lifts that for admins.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, anyStatus bool) (*order.Order, error) {
	return s.mutate(ctx, id, "cancel", func(o *order.Order, now time.Time) (bool, error) {
		if !anyStatus && o.Status != order.StatusCooking && !o.Status.Terminal() {
			return false, order.ErrCancelRestricted
		}
		return false, o.Cancel(now)
	})
}

// Delete removes one order and its items.
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.store.DeleteOrder(ctx, id)
	if err != nil {
		return dbError("delete order", err)
	}
	if n == 0 {
		return order.ErrOrderNotFound
	}
	logger.FromCtx(ctx).Info("order deleted", zap.String("order_id", id.String()))
	return nil
}

// DeleteClosedBefore removes completed and cancelled orders created before
// cutoff and returns how many were removed.
func (s *OrderService) DeleteClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.store.DeleteClosedOrdersBefore(ctx, cutoff)
	if err != nil {
		return 0, dbError("delete order history", err)
	}
	logger.FromCtx(ctx).Info("order history deleted", zap.Time("before", cutoff), zap.Int64("count", n))
	return n, nil
}

// ClearAll removes every order.
func (s *OrderService) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllOrders(ctx)
	if err != nil {
		return 0, dbError("clear orders", err)
	}
	logger.FromCtx(ctx).Warn("all orders cleared", zap.Int64("count", n))
	return n, nil
}

// mutate loads the order under a row lock, applies fn and writes the result
// back in the same transaction. Items are rewritten only when fn says so.
func (s *OrderService) mutate(ctx context.Context, id uuid.UUID, op string, fn func(o *order.Order, now time.Time) (bool, error)) (*order.Order, error) {
	var result *order.Order
	err := s.inTx(ctx, func(store OrderStore) error {
		o, err := s.load(ctx, store, id, true)
		if err != nil {
			return err
		}
		itemsChanged, err := fn(o, s.now())
		if err != nil {
			return err
		}

		if _, err := store.UpdateOrder(ctx, updateParams(o)); err != nil {
			return dbError(op, err)
		}
		if itemsChanged {
			if err := store.DeleteOrderItems(ctx, o.ID); err != nil {
				return dbError(op, err)
			}
			if err := insertItems(ctx, store, o); err != nil {
				return err
			}
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order updated",
		zap.String("op", op),
		zap.String("order_id", result.ID.String()),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

func (s *OrderService) inTx(ctx context.Context, fn func(store OrderStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return dbError("begin tx", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(s.newStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return dbError("commit tx", err)
	}
	return nil
}

func (s *OrderService) load(ctx context.Context, store OrderStore, id uuid.UUID, lock bool) (*order.Order, error) {
	get := store.GetOrder
	if lock {
		get = store.GetOrderForUpdate
	}
	row, err := get(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, order.ErrOrderNotFound
		}
		return nil, dbError("get order", err)
	}
	items, err := store.ListOrderItemsByOrder(ctx, id)
	if err != nil {
		return nil, dbError("list order items", err)
	}
	return toDomain(row, items), nil
}

func insertItems(ctx context.Context, store OrderStore, o *order.Order) error {
	for i, it := range o.Items {
		_, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:  o.ID,
			Position: int32(i),
			Name:     it.Name,
			Note:     it.Note,
			Quantity: int32(it.Quantity),
			Price:    decimalToNumeric(it.Price),
		})
		if err != nil {
			return dbError(fmt.Sprintf("create order item %d", i), err)
		}
	}
	return nil
}

// --- Notifications ---

func (s *OrderService) notifyStatus(ctx context.Context, o *order.Order) {
	if o.Customer == nil {
		return
	}
	switch {
	case o.Status == order.StatusReady && o.Kind() == order.KindPickup:
		s.send(ctx, o.Customer.Phone, s.sign(ctx, fmt.Sprintf("Hola %s, tu pedido está listo para recoger.", o.Customer.Name)))
	case o.Status == order.StatusReady && o.Kind() == order.KindDelivery:
		s.send(ctx, o.Customer.Phone, s.sign(ctx, fmt.Sprintf("Hola %s, tu pedido está listo y saldrá en breve.", o.Customer.Name)))
	case o.Status == order.StatusDelivering:
		s.send(ctx, o.Customer.Phone, s.sign(ctx, fmt.Sprintf("Hola %s, tu pedido va en camino.", o.Customer.Name)))
	}
}

func (s *OrderService) notifyStaff(ctx context.Context, message string) {
	if s.staff == nil {
		return
	}
	s.send(ctx, s.staff.StaffPhone(ctx), message)
}

func (s *OrderService) send(ctx context.Context, recipient, message string) {
	if s.sender == nil || recipient == "" {
		return
	}
	s.sender.Send(ctx, recipient, message)
}

func (s *OrderService) sign(ctx context.Context, message string) string {
	if s.staff == nil {
		return message
	}
	if name := s.staff.RestaurantName(ctx); name != "" {
		return message + " - " + name
	}
	return message
}

func newOrderMessage(o *order.Order) string {
	kind := "Pedido a domicilio"
	if o.Kind() == order.KindPickup {
		kind = "Pedido para recoger"
	}
	msg := fmt.Sprintf("%s de %s (%s): %s. Total $%s",
		kind, o.Customer.Name, o.Customer.Phone, o.EncodedItems(), o.Total.StringFixed(2))
	if o.Customer.Address != "" {
		msg += ". Dirección: " + o.Customer.Address
	}
	return msg
}

// --- Mapping ---

func createParams(o *order.Order) database.CreateOrderParams {
	p := database.CreateOrderParams{
		ID:            o.ID,
		TableNumber:   tableNumber(o.TableNumber),
		Status:        string(o.Status),
		Total:         decimalToNumeric(o.Total),
		IsDelivery:    o.IsDelivery,
		IsPickup:      o.IsPickup,
		IsUpdated:     o.IsUpdated,
		OriginalItems: optionalText(o.OriginalItems),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if c := o.Customer; c != nil {
		p.CustomerName = text(c.Name)
		p.CustomerPhone = text(c.Phone)
		p.CustomerAddress = text(c.Address)
	}
	return p
}

func updateParams(o *order.Order) database.UpdateOrderParams {
	return database.UpdateOrderParams{
		ID:            o.ID,
		TableNumber:   tableNumber(o.TableNumber),
		Status:        string(o.Status),
		Total:         decimalToNumeric(o.Total),
		IsUpdated:     o.IsUpdated,
		OriginalItems: optionalText(o.OriginalItems),
		UpdatedAt:     o.UpdatedAt,
	}
}

func toDomain(r database.Order, items []database.OrderItem) *order.Order {
	o := &order.Order{
		ID:          r.ID,
		TableNumber: int(r.TableNumber.Int32),
		Status:      order.Status(r.Status),
		Total:       numericToDecimal(r.Total),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		IsDelivery:  r.IsDelivery,
		IsPickup:    r.IsPickup,
		IsUpdated:   r.IsUpdated,
		Items:       make([]order.Item, len(items)),
	}
	if r.CustomerName.Valid || r.CustomerPhone.Valid {
		o.Customer = &order.Customer{
			Name:    r.CustomerName.String,
			Phone:   r.CustomerPhone.String,
			Address: r.CustomerAddress.String,
		}
	}
	if r.OriginalItems.Valid {
		snapshot := r.OriginalItems.String
		o.OriginalItems = &snapshot
	}
	for i, it := range items {
		o.Items[i] = order.Item{
			Name:     it.Name,
			Note:     it.Note,
			Quantity: int(it.Quantity),
			Price:    numericToDecimal(it.Price),
		}
	}
	// The stored total is rounded on its own; the items are authoritative.
	if len(o.Items) > 0 {
		o.RecomputeTotal()
	}
	return o
}

// --- Helpers ---

// DatabaseError is a persistence failure. Its message is for logs, not
// for clients.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *DatabaseError) Unwrap() error { return e.Err }

func dbError(op string, err error) error {
	return &DatabaseError{Op: op, Err: err}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func tableNumber(n int) pgtype.Int4 {
	if n <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}

func text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func optionalText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
