package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/karyanastore/storefront/internal/domain/cart"
)

type cartResponse struct {
	UserID    string      `json:"user_id"`
	Items     []cart.Item `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// GetCart returns the user's saved cart. A user with no saved cart gets an
// empty item list, not a 404.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), r.PathValue("userID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Cart    cartResponse `json:"cart"`
	}{true, cartResponse{UserID: c.UserID, Items: c.Items, UpdatedAt: c.UpdatedAt}})
}

type updateCartRequest struct {
	UserID string      `json:"user_id"`
	Items  []cart.Item `json:"items"`
}

// UpdateCart replaces the user's cart with the submitted item list. An
// empty list clears the cart.
func (h *Handler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondMessage(w, http.StatusBadRequest, false, "user_id is required")
		return
	}
	for _, item := range req.Items {
		if item.ProductID.IsZero() {
			respondMessage(w, http.StatusBadRequest, false, "item product_id is required")
			return
		}
		if item.Quantity <= 0 {
			respondMessage(w, http.StatusBadRequest, false, "item quantity must be positive")
			return
		}
		if item.Price.IsNegative() {
			respondMessage(w, http.StatusBadRequest, false, "item price cannot be negative")
			return
		}
	}

	c := &cart.Cart{UserID: req.UserID, Items: req.Items, UpdatedAt: time.Now().UTC()}
	if err := h.carts.Put(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "cart updated")
}
