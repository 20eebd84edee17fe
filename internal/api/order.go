package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/order"
)

type submitOrderRequest struct {
	UserID      string           `json:"user_id"`
	Customer    order.Customer   `json:"customer"`
	Items       []order.LineItem `json:"items"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	DeliveryFee decimal.Decimal  `json:"delivery_fee"`
	Total       decimal.Decimal  `json:"total"`
}

type orderResponse struct {
	ID                 string               `json:"id"`
	Customer           order.Customer       `json:"customer"`
	Items              []order.LineItem     `json:"items"`
	Subtotal           decimal.Decimal      `json:"subtotal"`
	DeliveryFee        decimal.Decimal      `json:"delivery_fee"`
	Total              decimal.Decimal      `json:"total"`
	Status             order.Status         `json:"status"`
	History            []order.HistoryEntry `json:"history"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	UserID             string               `json:"user_id,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	DeliveredAt        *time.Time           `json:"delivered_at,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	history := o.History
	if history == nil {
		history = []order.HistoryEntry{}
	}
	return orderResponse{
		ID:                 o.ID,
		Customer:           o.Customer,
		Items:              o.Items,
		Subtotal:           o.Subtotal,
		DeliveryFee:        o.DeliveryFee,
		Total:              o.Total,
		Status:             o.Status,
		History:            history,
		CancellationReason: o.CancellationReason,
		UserID:             o.UserID,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		DeliveredAt:        o.DeliveredAt,
	}
}

// SubmitOrder records a new order in the Pending state. The caller's totals
// are stored as declared; they are not recomputed from the catalog.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.orders.SubmitOrder(r.Context(), order.SubmitOrderRequest{
		Customer:    req.Customer,
		Items:       req.Items,
		Subtotal:    req.Subtotal,
		DeliveryFee: req.DeliveryFee,
		Total:       req.Total,
		UserID:      req.UserID,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		OrderID string       `json:"order_id"`
		Status  order.Status `json:"status"`
	}{true, "order placed successfully", id, order.StatusPending})
}

// GetOrder returns a single order with its full status history.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orderRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool          `json:"success"`
		Order   orderResponse `json:"order"`
	}{true, toOrderResponse(o)})
}

// ListUserOrders returns a user's orders, newest first.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderRepo.ListByUser(r.Context(), r.PathValue("userID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Orders  []orderResponse `json:"orders"`
	}{true, out})
}
