package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/karyanastore/storefront/internal/domain/product"
)

// SubmitOrderRequest holds the input for placing an order. Totals are
// caller-declared and stored as-is; the service does not recompute them
// from catalog prices.
type SubmitOrderRequest struct {
	Customer    Customer
	Items       []LineItem
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	UserID      string
}

// Service owns order creation and status transitions, including the stock
// side effects tied to delivery and post-delivery cancellation.
type Service struct {
	orders   Repository
	products product.Repository
	notifier Notifier
	lg       *zap.Logger
	now      func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, products product.Repository, notifier Notifier, lg *zap.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		orders:   orders,
		products: products,
		notifier: notifier,
		lg:       lg,
		now:      time.Now,
	}
}

// SubmitOrder validates the customer snapshot and item list, persists a
// new Pending order with an empty status history, and returns its ID.
// Stock is not touched here; it is only committed on delivery.
func (s *Service) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (string, error) {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return "", &ValidationError{Field: "customer.name"}
	}
	if strings.TrimSpace(req.Customer.Phone) == "" {
		return "", &ValidationError{Field: "customer.phone"}
	}
	if strings.TrimSpace(req.Customer.Address) == "" {
		return "", &ValidationError{Field: "customer.address"}
	}
	if len(req.Items) == 0 {
		return "", &ValidationError{Field: "items"}
	}
	for _, item := range req.Items {
		if item.ProductID.IsZero() {
			return "", &ValidationError{Field: "items.product_id"}
		}
		if item.Quantity <= 0 {
			return "", &ValidationError{Field: "items.quantity"}
		}
	}

	s.fillItemNames(ctx, req.Items)

	now := s.now()
	o := &Order{
		ID:          uuid.New().String(),
		Customer:    req.Customer,
		Items:       req.Items,
		Subtotal:    req.Subtotal,
		DeliveryFee: req.DeliveryFee,
		Total:       req.Total,
		Status:      StatusPending,
		History:     nil,
		UserID:      req.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return "", errors.Wrap(err, "create order")
	}

	s.lg.Info("order submitted",
		zap.String("order_id", o.ID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.Total.String()),
	)
	return o.ID, nil
}

// TransitionStatus moves an order to target, appending a history entry and
// applying the stock side effects:
//
//   - into Delivered: each line item's stock is decremented by its quantity;
//   - into Cancelled from a prior Delivered state: each quantity is restored.
//
// Stock adjustments are best-effort per item; a failure for one product is
// logged and skipped without aborting the transition or the other items.
// Transitioning to the order's current status is a no-op success, which
// keeps a repeated Delivered request from double-decrementing stock.
// A cancellation requires a non-empty reason.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, target Status, reason, actor string) error {
	if !target.Valid() {
		return &InvalidStatusError{Status: string(target)}
	}
	if target == StatusCancelled && strings.TrimSpace(reason) == "" {
		return &ValidationError{Field: "cancellation_reason"}
	}
	if target != StatusCancelled {
		reason = ""
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status == target {
		return nil
	}
	prior := o.Status

	now := s.now()
	t := Transition{
		OrderID:     orderID,
		PriorStatus: prior,
		NewStatus:   target,
		Entry:       HistoryEntry{Status: target, At: now, Actor: actor},
		Reason:      reason,
		DeliveredAt: o.DeliveredAt,
	}
	if target == StatusDelivered {
		t.DeliveredAt = &now
	}

	applied, err := s.orders.ApplyTransition(ctx, t)
	if err != nil {
		return errors.Wrap(err, "apply transition")
	}
	if !applied {
		// Another actor changed the status first; treat as the no-op path.
		s.lg.Info("status transition lost race, skipping",
			zap.String("order_id", orderID),
			zap.String("target", string(target)),
		)
		return nil
	}

	switch {
	case target == StatusDelivered:
		s.adjustStock(ctx, o, -1)
	case target == StatusCancelled && prior == StatusDelivered:
		s.adjustStock(ctx, o, +1)
	}

	o.Status = target
	o.CancellationReason = reason
	o.UpdatedAt = now
	o.DeliveredAt = t.DeliveredAt
	o.History = append(o.History, t.Entry)

	if err := s.notifier.OrderStatusChanged(ctx, o, reason); err != nil {
		s.lg.Warn("status notification failed",
			zap.String("order_id", orderID),
			zap.String("status", string(target)),
			zap.Error(err),
		)
	}

	s.lg.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(prior)),
		zap.String("to", string(target)),
		zap.String("actor", actor),
	)
	return nil
}

// fillItemNames backfills line item names from the catalog for items the
// caller submitted without one. A failed lookup leaves the name blank;
// the order stores the caller-declared snapshot either way.
func (s *Service) fillItemNames(ctx context.Context, items []LineItem) {
	var missing []product.ID
	for _, item := range items {
		if item.Name == "" {
			missing = append(missing, item.ProductID)
		}
	}
	if len(missing) == 0 {
		return
	}
	found, err := s.products.GetByIDs(ctx, missing)
	if err != nil {
		s.lg.Warn("product name lookup failed", zap.Error(err))
		return
	}
	names := make(map[product.ID]string, len(found))
	for _, p := range found {
		names[p.ID] = p.Name
	}
	for i := range items {
		if items[i].Name == "" {
			items[i].Name = names[items[i].ProductID]
		}
	}
}

// adjustStock applies sign*quantity to each line item's product stock.
// Failures are logged and skipped; inventory drift for one item must not
// block the rest of the order's fulfillment record.
func (s *Service) adjustStock(ctx context.Context, o *Order, sign int64) {
	for _, item := range o.Items {
		delta := sign * int64(item.Quantity)
		if err := s.products.AdjustStock(ctx, item.ProductID, delta); err != nil {
			s.lg.Warn("stock adjustment failed",
				zap.String("order_id", o.ID),
				zap.String("product_id", item.ProductID.String()),
				zap.Int64("delta", delta),
				zap.Error(err),
			)
		}
	}
}
