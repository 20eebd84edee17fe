package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/offer"
)

type offerResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	DiscountType offer.DiscountType `json:"discount_type"`
	Value        decimal.Decimal    `json:"value"`
	Mode         offer.Mode         `json:"mode"`
	Code         string             `json:"code,omitempty"`
	MinPurchase  decimal.Decimal    `json:"min_purchase"`
	MaxDiscount  decimal.Decimal    `json:"max_discount"`
	StartsAt     time.Time          `json:"starts_at"`
	EndsAt       *time.Time         `json:"ends_at,omitempty"`
	Active       bool               `json:"active"`
}

func toOfferResponse(o *offer.Offer) offerResponse {
	return offerResponse{
		ID:           o.ID,
		Title:        o.Title,
		Description:  o.Description,
		DiscountType: o.DiscountType,
		Value:        o.Value,
		Mode:         o.Mode,
		Code:         o.Code,
		MinPurchase:  o.MinPurchase,
		MaxDiscount:  o.MaxDiscount,
		StartsAt:     o.StartsAt,
		EndsAt:       o.EndsAt,
		Active:       o.Active,
	}
}

type validateCodeRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

// ValidatePromoCode checks a promo code against the cart total and returns
// the discount it would grant.
func (h *Handler) ValidatePromoCode(w http.ResponseWriter, r *http.Request) {
	var req validateCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.evaluator.ValidatePromoCode(r.Context(), req.Code, req.CartTotal)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success    bool            `json:"success"`
		Message    string          `json:"message"`
		OfferID    string          `json:"offer_id"`
		Discount   decimal.Decimal `json:"discount"`
		FinalTotal decimal.Decimal `json:"final_total"`
	}{true, "offer applied", res.Offer.ID, res.DiscountAmount, res.FinalTotal})
}

type applicableOfferResponse struct {
	Offer      offerResponse   `json:"offer"`
	Discount   decimal.Decimal `json:"discount"`
	FinalTotal decimal.Decimal `json:"final_total"`
}

// ApplicableOffers lists every automatic offer that applies to the given
// cart total, marking the one granting the largest discount.
func (h *Handler) ApplicableOffers(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("total"))
	if raw == "" {
		respondMessage(w, http.StatusBadRequest, false, "total query parameter is required")
		return
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "total must be a number")
		return
	}

	ev, err := h.evaluator.ApplicableOffers(r.Context(), total)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]applicableOfferResponse, len(ev.Offers))
	for i, od := range ev.Offers {
		out[i] = applicableOfferResponse{
			Offer:      toOfferResponse(&od.Offer),
			Discount:   od.DiscountAmount,
			FinalTotal: od.FinalTotal,
		}
	}

	resp := struct {
		Success      bool                      `json:"success"`
		Offers       []applicableOfferResponse `json:"offers"`
		BestOfferID  string                    `json:"best_offer_id,omitempty"`
		BestDiscount decimal.Decimal           `json:"best_discount"`
	}{Success: true, Offers: out, BestDiscount: ev.BestDiscount}
	if ev.Best != nil {
		resp.BestOfferID = ev.Best.Offer.ID
	}
	respondJSON(w, http.StatusOK, resp)
}
