package offer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// PromoResult holds the outcome of a successful promo-code validation.
// Amounts are rounded to currency precision.
type PromoResult struct {
	Offer          *Offer
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
}

// OfferDiscount pairs an automatic offer with the discount it would grant.
type OfferDiscount struct {
	Offer          Offer
	DiscountAmount decimal.Decimal
	FinalTotal     decimal.Decimal
}

// Evaluation is the result of scanning automatic offers for a cart total.
// Best is nil when no offer applies.
type Evaluation struct {
	Offers       []OfferDiscount
	Best         *OfferDiscount
	BestDiscount decimal.Decimal
}

// Evaluator validates promo codes and selects automatic offers against a
// cart total.
type Evaluator struct {
	offers Repository
	now    func() time.Time
}

// NewEvaluator creates an Evaluator backed by the given offer repository.
func NewEvaluator(offers Repository) *Evaluator {
	return &Evaluator{offers: offers, now: time.Now}
}

// ValidatePromoCode looks up the promo-code offer for code, checks its
// activation window and minimum purchase, and computes the discount.
// It returns ErrNotFound for unknown or expired codes and BelowMinimumError
// when the cart total is under the minimum purchase.
func (e *Evaluator) ValidatePromoCode(ctx context.Context, code string, cartTotal decimal.Decimal) (*PromoResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	o, err := e.offers.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup promo code")
	}

	now := e.now()
	if now.Before(o.StartsAt) || (o.EndsAt != nil && now.After(*o.EndsAt)) {
		return nil, ErrNotFound
	}

	if cartTotal.LessThan(o.MinPurchase) {
		return nil, &BelowMinimumError{
			MinPurchase: o.MinPurchase,
			Shortfall:   o.MinPurchase.Sub(cartTotal),
		}
	}

	amount := Compute(o, cartTotal).Round(2)
	return &PromoResult{
		Offer:          o,
		DiscountAmount: amount,
		FinalTotal:     cartTotal.Sub(amount).Round(2),
	}, nil
}

// ApplicableOffers scans all currently applicable automatic offers and
// returns each one's discount plus the single best offer. The best offer
// is the one with the strictly largest discount; ties go to the smallest
// offer ID (the repository orders by ID and the scan keeps the first).
// A non-positive cart total yields an empty evaluation with no error.
func (e *Evaluator) ApplicableOffers(ctx context.Context, cartTotal decimal.Decimal) (*Evaluation, error) {
	ev := &Evaluation{BestDiscount: decimal.Zero}
	if !cartTotal.IsPositive() {
		return ev, nil
	}

	offers, err := e.offers.ListAutomatic(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list automatic offers")
	}

	now := e.now()
	bestIdx := -1
	for i := range offers {
		o := offers[i]
		if !o.ApplicableAt(now, cartTotal) {
			continue
		}

		amount := Compute(&o, cartTotal).Round(2)
		ev.Offers = append(ev.Offers, OfferDiscount{
			Offer:          o,
			DiscountAmount: amount,
			FinalTotal:     cartTotal.Sub(amount).Round(2),
		})

		if amount.GreaterThan(ev.BestDiscount) {
			bestIdx = len(ev.Offers) - 1
			ev.BestDiscount = amount
		}
	}
	if bestIdx >= 0 {
		ev.Best = &ev.Offers[bestIdx]
	}

	return ev, nil
}
