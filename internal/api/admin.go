package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/offer"
	"github.com/karyanastore/storefront/internal/domain/order"
)

// AdminListOrders returns every order, optionally filtered by ?status=.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter = order.Status(raw)
		if !filter.Valid() {
			respondMessage(w, http.StatusBadRequest, false, "invalid order status: "+raw)
			return
		}
	}

	orders, err := h.orderRepo.ListAll(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		if filter != "" && orders[i].Status != filter {
			continue
		}
		out = append(out, toOrderResponse(&orders[i]))
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Orders  []orderResponse `json:"orders"`
	}{true, out})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AdminUpdateOrderStatus moves an order to a new lifecycle status. The
// acting admin is recorded in the order's history.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	actor := "admin"
	if u := adminFromContext(r.Context()); u != nil {
		actor = u.ID
	}

	err := h.orders.TransitionStatus(r.Context(), r.PathValue("id"), order.Status(req.Status), req.Reason, actor)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "order status updated")
}

// AdminListUsers returns every registered user, without password hashes.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Users   []userResponse `json:"users"`
	}{true, out})
}

// AdminSalesReport sums delivered order totals over [from, to). Dates are
// accepted as RFC 3339 timestamps or plain YYYY-MM-DD.
func (h *Handler) AdminSalesReport(w http.ResponseWriter, r *http.Request) {
	from, ok := parseReportTime(w, r.URL.Query().Get("from"), "from")
	if !ok {
		return
	}
	to, ok := parseReportTime(w, r.URL.Query().Get("to"), "to")
	if !ok {
		return
	}
	if !to.After(from) {
		respondMessage(w, http.StatusBadRequest, false, "to must be after from")
		return
	}

	total, count, err := h.orderRepo.SalesTotals(r.Context(), from, to)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success    bool            `json:"success"`
		From       time.Time       `json:"from"`
		To         time.Time       `json:"to"`
		TotalSales decimal.Decimal `json:"total_sales"`
		OrderCount int64           `json:"order_count"`
	}{true, from, to, total, count})
}

func parseReportTime(w http.ResponseWriter, raw, name string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		respondMessage(w, http.StatusBadRequest, false, name+" query parameter is required")
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	respondMessage(w, http.StatusBadRequest, false, name+" must be RFC 3339 or YYYY-MM-DD")
	return time.Time{}, false
}

// AdminListOffers returns every offer, active or not.
func (h *Handler) AdminListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]offerResponse, len(offers))
	for i := range offers {
		out[i] = toOfferResponse(&offers[i])
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Offers  []offerResponse `json:"offers"`
	}{true, out})
}

type offerRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	Mode         string          `json:"mode"`
	Code         string          `json:"code"`
	MinPurchase  decimal.Decimal `json:"min_purchase"`
	MaxDiscount  decimal.Decimal `json:"max_discount"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       *time.Time      `json:"ends_at"`
	Active       bool            `json:"active"`
}

func (req *offerRequest) toOffer(w http.ResponseWriter) (*offer.Offer, bool) {
	dt := offer.DiscountType(req.DiscountType)
	mode := offer.Mode(req.Mode)
	switch {
	case strings.TrimSpace(req.Title) == "":
		respondMessage(w, http.StatusBadRequest, false, "title is required")
	case dt != offer.DiscountPercentage && dt != offer.DiscountFixed:
		respondMessage(w, http.StatusBadRequest, false, "discount_type must be percentage or fixed")
	case !req.Value.IsPositive():
		respondMessage(w, http.StatusBadRequest, false, "value must be positive")
	case dt == offer.DiscountPercentage && req.Value.GreaterThan(decimal.NewFromInt(100)):
		respondMessage(w, http.StatusBadRequest, false, "percentage value cannot exceed 100")
	case mode != offer.ModeAutomatic && mode != offer.ModePromoCode:
		respondMessage(w, http.StatusBadRequest, false, "mode must be automatic or promo_code")
	case mode == offer.ModePromoCode && strings.TrimSpace(req.Code) == "":
		respondMessage(w, http.StatusBadRequest, false, "promo code offers require a code")
	case req.MinPurchase.IsNegative() || req.MaxDiscount.IsNegative():
		respondMessage(w, http.StatusBadRequest, false, "min_purchase and max_discount cannot be negative")
	case req.EndsAt != nil && !req.EndsAt.After(req.StartsAt):
		respondMessage(w, http.StatusBadRequest, false, "ends_at must be after starts_at")
	default:
		return &offer.Offer{
			Title:        strings.TrimSpace(req.Title),
			Description:  req.Description,
			DiscountType: dt,
			Value:        req.Value,
			Mode:         mode,
			Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
			MinPurchase:  req.MinPurchase,
			MaxDiscount:  req.MaxDiscount,
			StartsAt:     req.StartsAt,
			EndsAt:       req.EndsAt,
			Active:       req.Active,
		}, true
	}
	return nil, false
}

// AdminCreateOffer adds a new offer.
func (h *Handler) AdminCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	o, ok := req.toOffer(w)
	if !ok {
		return
	}
	o.ID = uuid.NewString()

	if err := h.offers.Create(r.Context(), o); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		OfferID string `json:"offer_id"`
	}{true, "offer created", o.ID})
}

// AdminUpdateOffer replaces an offer's definition.
func (h *Handler) AdminUpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	o, ok := req.toOffer(w)
	if !ok {
		return
	}
	o.ID = r.PathValue("id")

	if err := h.offers.Update(r.Context(), o); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "offer updated")
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

// AdminSetOfferActive toggles an offer without touching its definition.
func (h *Handler) AdminSetOfferActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.offers.SetActive(r.Context(), r.PathValue("id"), req.Active); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "offer updated")
}
