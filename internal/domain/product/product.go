package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
// A nil Stock means the product's inventory is not tracked.
type Product struct {
	ID       ID
	Name     string
	Price    decimal.Decimal
	Category string
	Stock    *int64
	ImageURL string
}

// Tracked reports whether inventory is tracked for this product.
func (p *Product) Tracked() bool {
	return p.Stock != nil
}

// Repository defines catalog operations, including the atomic stock
// adjustment used by order fulfillment.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id ID) (*Product, error)
	GetByIDs(ctx context.Context, ids []ID) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id ID) error

	// AdjustStock atomically adds delta to the product's stock counter,
	// flooring the result at zero. It is a no-op for untracked products
	// and returns ErrNotFound when the product does not exist.
	AdjustStock(ctx context.Context, id ID, delta int64) error
}
