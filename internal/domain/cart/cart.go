package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/product"
)

// Item is one product entry in a saved cart.
type Item struct {
	ProductID product.ID      `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is a user's persisted cart, replaced whole on every update.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

// Repository defines persistence operations for carts. Get returns an
// empty cart (never an error) when the user has none saved yet.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
}
