package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/order"
)

const (
	createOrderSQL = `INSERT INTO orders
		(id, customer, items, subtotal, delivery_fee, total, status, history, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb, $8, $9, $10)`

	orderColumns = `id, customer, items, subtotal, delivery_fee, total, status, history,
		cancellation_reason, user_id, created_at, updated_at, delivered_at`

	getOrderByIDSQL   = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	listAllOrdersSQL  = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	// Conditional on the prior status so concurrent duplicate transitions
	// match at most once. The history append (JSONB ||) is atomic with the
	// status change.
	applyTransitionSQL = `UPDATE orders
		SET status = $3,
		    history = history || $4::jsonb,
		    cancellation_reason = $5,
		    delivered_at = $6,
		    updated_at = $7
		WHERE id = $1 AND status = $2`

	salesTotalsSQL = `SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status = 'Delivered' AND delivered_at >= $1 AND delivered_at < $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
// Customer snapshot, line items, and status history live in JSONB columns.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order with an empty status history.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	customerJSON, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("marshaling customer snapshot: %w", err)
	}
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	var userID *string
	if o.UserID != "" {
		userID = &o.UserID
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, customerJSON, itemsJSON, o.Subtotal, o.DeliveryFee, o.Total,
		string(o.Status), userID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listAllOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ApplyTransition persists a status change conditionally on the prior
// status and reports whether a row matched.
func (r *OrderRepository) ApplyTransition(ctx context.Context, t order.Transition) (bool, error) {
	entryJSON, err := json.Marshal([]order.HistoryEntry{t.Entry})
	if err != nil {
		return false, fmt.Errorf("marshaling history entry: %w", err)
	}

	tag, err := r.pool.Exec(ctx, applyTransitionSQL,
		t.OrderID, string(t.PriorStatus), string(t.NewStatus),
		entryJSON, t.Reason, t.DeliveredAt, t.Entry.At,
	)
	if err != nil {
		return false, fmt.Errorf("transitioning order %q to %q: %w", t.OrderID, t.NewStatus, err)
	}
	return tag.RowsAffected() > 0, nil
}

// SalesTotals sums delivered order totals within [from, to).
func (r *OrderRepository) SalesTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error) {
	var (
		sum   decimal.Decimal
		count int64
	)
	if err := r.pool.QueryRow(ctx, salesTotalsSQL, from, to).Scan(&sum, &count); err != nil {
		return decimal.Zero, 0, fmt.Errorf("summing delivered totals: %w", err)
	}
	return sum, count, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o            order.Order
		customerJSON []byte
		itemsJSON    []byte
		historyJSON  []byte
		status       string
		userID       *string
	)
	err := row.Scan(
		&o.ID, &customerJSON, &itemsJSON, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&status, &historyJSON, &o.CancellationReason, &userID,
		&o.CreatedAt, &o.UpdatedAt, &o.DeliveredAt,
	)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return o, fmt.Errorf("unmarshaling customer snapshot: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &o.History); err != nil {
		return o, fmt.Errorf("unmarshaling status history: %w", err)
	}

	o.Status = order.Status(status)
	if userID != nil {
		o.UserID = *userID
	}
	return o, nil
}
