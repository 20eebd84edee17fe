package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/product"
)

// Status is an order's lifecycle state. Only the five declared values are
// legal; anything else is rejected.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusProcessing     Status = "Processing"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCancelled      Status = "Cancelled"
)

// Valid reports whether s is one of the five legal status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ErrNotFound is returned when an order identifier does not resolve.
var ErrNotFound = errors.New("order not found")

// InvalidStatusError indicates a status value outside the legal enum.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return "invalid order status: " + e.Status
}

// ValidationError indicates missing or malformed input, naming the field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing or invalid field: " + e.Field
}

// Customer is the contact snapshot captured at submission time. It is not
// a live reference to a user record. Email is optional.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email,omitempty"`
}

// LineItem is one product entry within an order, with the unit price
// captured at order time.
type LineItem struct {
	ProductID product.ID      `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// HistoryEntry is one record in the order's append-only status log.
type HistoryEntry struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
}

// Order is the persisted order document. Created once at submission,
// mutated only by status transitions, never deleted.
type Order struct {
	ID          string
	Customer    Customer
	Items       []LineItem
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal

	Status             Status
	History            []HistoryEntry
	CancellationReason string

	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeliveredAt *time.Time
}

// Transition describes a persisted status change. PriorStatus makes the
// update conditional: the store applies it only if the order is still in
// that status, which keeps concurrent duplicate transitions idempotent.
type Transition struct {
	OrderID     string
	PriorStatus Status
	NewStatus   Status
	Entry       HistoryEntry
	Reason      string
	DeliveredAt *time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	// ApplyTransition persists t atomically: status, cancellation reason,
	// delivered timestamp, history append, and updated_at in one update.
	// It reports whether the conditional update matched a row.
	ApplyTransition(ctx context.Context, t Transition) (bool, error)

	// SalesTotals sums delivered order totals whose delivery timestamp
	// falls within [from, to), returning the sum and the order count.
	SalesTotals(ctx context.Context, from, to time.Time) (decimal.Decimal, int64, error)
}

// Notifier delivers order status updates to the customer. Implementations
// must be safe to fail: callers log and continue.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o *Order, reason string) error
}

// NopNotifier is a Notifier that does nothing.
type NopNotifier struct{}

func (NopNotifier) OrderStatusChanged(context.Context, *Order, string) error { return nil }
