package offer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage of the cart total.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary amount.
	DiscountFixed DiscountType = "fixed"
)

// Mode enumerates how an offer is applied.
type Mode string

const (
	// ModeAutomatic applies without a code once the cart total qualifies.
	ModeAutomatic Mode = "automatic"
	// ModePromoCode requires the customer to supply a matching code.
	ModePromoCode Mode = "promo_code"
)

// ErrNotFound is returned when no active promo-code offer matches the
// supplied code within its activation window.
var ErrNotFound = errors.New("promo code not found")

// BelowMinimumError indicates the cart total does not meet the offer's
// minimum purchase threshold.
type BelowMinimumError struct {
	MinPurchase decimal.Decimal
	Shortfall   decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return "add " + e.Shortfall.StringFixed(2) + " more to use this code (minimum purchase " +
		e.MinPurchase.StringFixed(2) + ")"
}

// Offer defines a discount with its eligibility constraints.
// MaxDiscount is meaningful only for percentage offers; zero means uncapped.
type Offer struct {
	ID          string
	Title       string
	Description string

	DiscountType DiscountType
	Value        decimal.Decimal

	Mode Mode
	Code string

	MinPurchase decimal.Decimal
	MaxDiscount decimal.Decimal

	StartsAt time.Time
	EndsAt   *time.Time
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApplicableAt reports whether the offer can be applied at the given
// instant to a cart with the given total.
func (o *Offer) ApplicableAt(now time.Time, cartTotal decimal.Decimal) bool {
	if !o.Active {
		return false
	}
	if now.Before(o.StartsAt) {
		return false
	}
	if o.EndsAt != nil && now.After(*o.EndsAt) {
		return false
	}
	return cartTotal.GreaterThanOrEqual(o.MinPurchase)
}

// Repository provides lookup and administration of offers.
type Repository interface {
	// FindByCode looks up an active promo-code offer, case-insensitively.
	// Returns ErrNotFound when no matching active offer exists.
	FindByCode(ctx context.Context, code string) (*Offer, error)
	// ListAutomatic returns all active automatic-mode offers ordered by ID.
	ListAutomatic(ctx context.Context) ([]Offer, error)

	List(ctx context.Context) ([]Offer, error)
	Create(ctx context.Context, o *Offer) error
	Update(ctx context.Context, o *Offer) error
	SetActive(ctx context.Context, id string, active bool) error
}
