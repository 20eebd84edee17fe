package offer

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Compute calculates the discount amount an offer grants on a cart total.
// It is the single computation path shared by promo-code validation and
// automatic offer selection, so the two can never drift apart.
//
// Percentage offers are clamped to MaxDiscount when one is set; every
// discount is clamped to the cart total and floored at zero.
func Compute(o *Offer, cartTotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch o.DiscountType {
	case DiscountPercentage:
		amount = cartTotal.Mul(o.Value).Div(hundred)
		if o.MaxDiscount.IsPositive() && amount.GreaterThan(o.MaxDiscount) {
			amount = o.MaxDiscount
		}
	case DiscountFixed:
		amount = o.Value
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(cartTotal) {
		amount = cartTotal
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
