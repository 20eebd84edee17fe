package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/offer"
)

const (
	offerColumns = `id, title, description, discount_type, value, mode, code,
		min_purchase, max_discount, starts_at, ends_at, active, created_at, updated_at`

	getOfferByCodeSQL = `SELECT ` + offerColumns + ` FROM offers
		WHERE mode = 'promo_code' AND UPPER(code) = UPPER($1) AND active = TRUE`

	listAutomaticOffersSQL = `SELECT ` + offerColumns + ` FROM offers
		WHERE mode = 'automatic' AND active = TRUE ORDER BY id`

	listOffersSQL = `SELECT ` + offerColumns + ` FROM offers ORDER BY id`

	createOfferSQL = `INSERT INTO offers
		(id, title, description, discount_type, value, mode, code,
		 min_purchase, max_discount, starts_at, ends_at, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())`

	updateOfferSQL = `UPDATE offers
		SET title = $2, description = $3, discount_type = $4, value = $5,
		    mode = $6, code = $7, min_purchase = $8, max_discount = $9,
		    starts_at = $10, ends_at = $11, active = $12, updated_at = now()
		WHERE id = $1`

	setOfferActiveSQL = `UPDATE offers SET active = $2, updated_at = now() WHERE id = $1`
)

var _ offer.Repository = (*OfferRepository)(nil)

// OfferRepository implements offer.Repository backed by PostgreSQL.
type OfferRepository struct {
	pool *pgxpool.Pool
}

// NewOfferRepository returns an OfferRepository that uses the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// FindByCode looks up an active promo-code offer, case-insensitively.
// Returns offer.ErrNotFound when no matching active offer exists.
func (r *OfferRepository) FindByCode(ctx context.Context, code string) (*offer.Offer, error) {
	rows, err := r.pool.Query(ctx, getOfferByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOffer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, offer.ErrNotFound
		}
		return nil, fmt.Errorf("finding offer by code %q: %w", code, err)
	}
	return &o, nil
}

// ListAutomatic returns all active automatic-mode offers ordered by ID.
func (r *OfferRepository) ListAutomatic(ctx context.Context) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listAutomaticOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing automatic offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// List returns every offer regardless of mode or active flag.
func (r *OfferRepository) List(ctx context.Context) ([]offer.Offer, error) {
	rows, err := r.pool.Query(ctx, listOffersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	return pgx.CollectRows(rows, scanOffer)
}

// Create inserts a new offer.
func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	_, err := r.pool.Exec(ctx, createOfferSQL,
		o.ID, o.Title, o.Description, string(o.DiscountType), o.Value,
		string(o.Mode), nullableCode(o), o.MinPurchase, o.MaxDiscount,
		o.StartsAt, o.EndsAt, o.Active,
	)
	if err != nil {
		return fmt.Errorf("creating offer %q: %w", o.ID, err)
	}
	return nil
}

// Update replaces an offer's definition.
func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	tag, err := r.pool.Exec(ctx, updateOfferSQL,
		o.ID, o.Title, o.Description, string(o.DiscountType), o.Value,
		string(o.Mode), nullableCode(o), o.MinPurchase, o.MaxDiscount,
		o.StartsAt, o.EndsAt, o.Active,
	)
	if err != nil {
		return fmt.Errorf("updating offer %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

// SetActive toggles an offer's active flag.
func (r *OfferRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, setOfferActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("toggling offer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrNotFound
	}
	return nil
}

func nullableCode(o *offer.Offer) *string {
	if o.Mode != offer.ModePromoCode || o.Code == "" {
		return nil
	}
	return &o.Code
}

func scanOffer(row pgx.CollectableRow) (offer.Offer, error) {
	var (
		o            offer.Offer
		discountType string
		mode         string
		code         *string
		value        decimal.Decimal
		minPurchase  decimal.Decimal
		maxDiscount  decimal.Decimal
		endsAt       *time.Time
	)
	err := row.Scan(
		&o.ID, &o.Title, &o.Description, &discountType, &value, &mode, &code,
		&minPurchase, &maxDiscount, &o.StartsAt, &endsAt, &o.Active,
		&o.CreatedAt, &o.UpdatedAt,
	)
	o.DiscountType = offer.DiscountType(discountType)
	o.Mode = offer.Mode(mode)
	if code != nil {
		o.Code = *code
	}
	o.Value = value
	o.MinPurchase = minPurchase
	o.MaxDiscount = maxDiscount
	o.EndsAt = endsAt
	return o, err
}
