package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, table_number, status, total, is_delivery, is_pickup,
	customer_name, customer_phone, customer_address, is_updated, original_items,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.TableNumber,
		&i.Status,
		&i.Total,
		&i.IsDelivery,
		&i.IsPickup,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.IsUpdated,
		&i.OriginalItems,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) listOrders(ctx context.Context, query string, args ...interface{}) ([]Order, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
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

const createOrder = `INSERT INTO orders (
	id, table_number, status, total, is_delivery, is_pickup,
	customer_name, customer_phone, customer_address, is_updated, original_items,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + orderColumns

type CreateOrderParams struct {
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

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.ID,
		arg.TableNumber,
		arg.Status,
		arg.Total,
		arg.IsDelivery,
		arg.IsPickup,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerAddress,
		arg.IsUpdated,
		arg.OriginalItems,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanOrder(row)
}

const getOrder = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = getOrder + ` FOR UPDATE`

// GetOrderForUpdate locks the row until the surrounding transaction ends.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listActiveOrders = `SELECT ` + orderColumns + ` FROM orders
WHERE status NOT IN ('COMPLETED', 'CANCELLED')
ORDER BY created_at ASC`

func (q *Queries) ListActiveOrders(ctx context.Context) ([]Order, error) {
	return q.listOrders(ctx, listActiveOrders)
}

const listAllOrders = `SELECT ` + orderColumns + ` FROM orders
ORDER BY created_at DESC`

func (q *Queries) ListAllOrders(ctx context.Context) ([]Order, error) {
	return q.listOrders(ctx, listAllOrders)
}

const listOrdersByStatus = `SELECT ` + orderColumns + ` FROM orders
WHERE status = $1
ORDER BY created_at ASC`

func (q *Queries) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	return q.listOrders(ctx, listOrdersByStatus, status)
}

const listCompletedOrdersBetween = `SELECT ` + orderColumns + ` FROM orders
WHERE status = 'COMPLETED' AND created_at >= $1 AND created_at < $2
ORDER BY created_at ASC`

type ListCompletedOrdersBetweenParams struct {
	Start time.Time
	End   time.Time
}

func (q *Queries) ListCompletedOrdersBetween(ctx context.Context, arg ListCompletedOrdersBetweenParams) ([]Order, error) {
	return q.listOrders(ctx, listCompletedOrdersBetween, arg.Start, arg.End)
}

const updateOrder = `UPDATE orders SET
	table_number = $2,
	status = $3,
	total = $4,
	is_updated = $5,
	original_items = $6,
	updated_at = $7
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderParams struct {
	ID            uuid.UUID
	TableNumber   pgtype.Int4
	Status        string
	Total         pgtype.Numeric
	IsUpdated     bool
	OriginalItems pgtype.Text
	UpdatedAt     time.Time
}

func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrder,
		arg.ID,
		arg.TableNumber,
		arg.Status,
		arg.Total,
		arg.IsUpdated,
		arg.OriginalItems,
		arg.UpdatedAt,
	)
	return scanOrder(row)
}

const deleteOrder = `DELETE FROM orders WHERE id = $1`

func (q *Queries) DeleteOrder(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteOrder, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteAllOrders = `DELETE FROM orders`

func (q *Queries) DeleteAllOrders(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, deleteAllOrders)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteClosedOrdersBefore = `DELETE FROM orders
WHERE created_at < $1 AND status IN ('COMPLETED', 'CANCELLED')`

// DeleteClosedOrdersBefore removes completed and cancelled orders created
// before cutoff.
func (q *Queries) DeleteClosedOrdersBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.Exec(ctx, deleteClosedOrdersBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const orderItemColumns = `id, order_id, position, name, note, quantity, price`

func scanOrderItem(row interface{ Scan(...interface{}) error }) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Position,
		&i.Name,
		&i.Note,
		&i.Quantity,
		&i.Price,
	)
	return i, err
}

const createOrderItem = `INSERT INTO order_items (order_id, position, name, note, quantity, price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID  uuid.UUID
	Position int32
	Name     string
	Note     string
	Quantity int32
	Price    pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.Position,
		arg.Name,
		arg.Note,
		arg.Quantity,
		arg.Price,
	)
	return scanOrderItem(row)
}

const deleteOrderItems = `DELETE FROM order_items WHERE order_id = $1`

func (q *Queries) DeleteOrderItems(ctx context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteOrderItems, orderID)
	return err
}

const listOrderItemsByOrder = `SELECT ` + orderItemColumns + ` FROM order_items
WHERE order_id = $1
ORDER BY position ASC`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]OrderItem, error) {
	return q.listOrderItems(ctx, listOrderItemsByOrder, orderID)
}

const listOrderItemsByOrders = `SELECT ` + orderItemColumns + ` FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position ASC`

func (q *Queries) ListOrderItemsByOrders(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItem, error) {
	return q.listOrderItems(ctx, listOrderItemsByOrders, orderIDs)
}

func (q *Queries) listOrderItems(ctx context.Context, query string, args ...interface{}) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []OrderItem{}
	for rows.Next() {
		i, err := scanOrderItem(rows)
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
