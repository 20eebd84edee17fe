//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func submitTestOrder(t *testing.T, productID string, qty int) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/submit-order", map[string]any{
		"customer": map[string]string{
			"name":    "Integration Tester",
			"phone":   "9876543210",
			"address": "12 MG Road, Pune",
		},
		"items": []map[string]any{
			{"product_id": productID, "name": "Seeded product", "unit_price": "83", "quantity": qty},
		},
		"subtotal":     "166",
		"delivery_fee": "40",
		"total":        "206",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit order status %d", resp.StatusCode)
	}
	body := decodeJSON[submitOrderResponse](t, resp)
	if body.OrderID == "" {
		t.Fatal("submit order returned empty order_id")
	}
	if body.Status != "Pending" {
		t.Fatalf("new order status = %q, want Pending", body.Status)
	}
	return body.OrderID
}

func updateStatus(t *testing.T, admin map[string]string, orderID, status, reason string) *http.Response {
	t.Helper()

	body := map[string]string{"status": status}
	if reason != "" {
		body["reason"] = reason
	}
	return doJSON(t, http.MethodPut, fmt.Sprintf("/admin/orders/%s/status", orderID), body, admin)
}

func getOrder(t *testing.T, orderID string) orderDetail {
	t.Helper()

	resp := doGet(t, "/order/"+orderID, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order status %d", resp.StatusCode)
	}
	return decodeJSON[orderResponse](t, resp).Order
}

func productStock(t *testing.T, productID string) *int64 {
	t.Helper()

	resp := doGet(t, "/products", nil)
	defer resp.Body.Close()
	body := decodeJSON[productsResponse](t, resp)
	for _, p := range body.Products {
		if p.ID == productID {
			return p.Stock
		}
	}
	t.Fatalf("product %s not in catalog", productID)
	return nil
}

func TestOrderLifecycleDeliveryCommitsStock(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "1", 2)

	before := productStock(t, "1")
	if before == nil {
		t.Fatal("seeded product 1 should have tracked stock")
	}

	for _, status := range []string{"Processing", "Out for Delivery"} {
		resp := updateStatus(t, admin, orderID, status, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("transition to %s: status %d", status, resp.StatusCode)
		}
	}

	// Stock untouched until delivery.
	if mid := productStock(t, "1"); *mid != *before {
		t.Fatalf("stock changed before delivery: %d -> %d", *before, *mid)
	}

	resp := updateStatus(t, admin, orderID, "Delivered", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("transition to Delivered: status %d", resp.StatusCode)
	}

	after := productStock(t, "1")
	if *after != *before-2 {
		t.Fatalf("stock after delivery = %d, want %d", *after, *before-2)
	}

	o := getOrder(t, orderID)
	if o.Status != "Delivered" {
		t.Fatalf("order status = %q, want Delivered", o.Status)
	}
	if o.DeliveredAt == nil {
		t.Fatal("delivered order has no delivered_at timestamp")
	}
	if len(o.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(o.History))
	}
}

func TestCancellationAfterDeliveryRestoresStock(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "2", 2)

	before := productStock(t, "2")
	for _, status := range []string{"Processing", "Out for Delivery", "Delivered"} {
		resp := updateStatus(t, admin, orderID, status, "")
		resp.Body.Close()
	}
	delivered := productStock(t, "2")
	if *delivered != *before-2 {
		t.Fatalf("stock after delivery = %d, want %d", *delivered, *before-2)
	}

	resp := updateStatus(t, admin, orderID, "Cancelled", "customer returned the order")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel after delivery: status %d", resp.StatusCode)
	}

	restored := productStock(t, "2")
	if *restored != *before {
		t.Fatalf("stock after cancellation = %d, want %d restored", *restored, *before)
	}

	o := getOrder(t, orderID)
	if o.CancellationReason != "customer returned the order" {
		t.Fatalf("cancellation reason = %q", o.CancellationReason)
	}
}

func TestCancellationBeforeDeliveryLeavesStock(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "3", 1)

	before := productStock(t, "3")
	resp := updateStatus(t, admin, orderID, "Cancelled", "changed my mind")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel pending order: status %d", resp.StatusCode)
	}

	if after := productStock(t, "3"); *after != *before {
		t.Fatalf("stock changed on pre-delivery cancellation: %d -> %d", *before, *after)
	}
}

func TestCancellationRequiresReason(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "4", 1)

	resp := updateStatus(t, admin, orderID, "Cancelled", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("cancel without reason: status %d, want 400", resp.StatusCode)
	}
}

func TestInvalidStatusRejected(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "5", 1)

	resp := updateStatus(t, admin, orderID, "Shipped", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status: status %d, want 400", resp.StatusCode)
	}
}

func TestRepeatedDeliveryDoesNotDoubleDecrement(t *testing.T) {
	admin := adminHeaders(t)
	orderID := submitTestOrder(t, "6", 1)

	before := productStock(t, "6")
	for range 2 {
		resp := updateStatus(t, admin, orderID, "Delivered", "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("deliver: status %d", resp.StatusCode)
		}
	}

	if after := productStock(t, "6"); *after != *before-1 {
		t.Fatalf("stock after repeated delivery = %d, want %d", *after, *before-1)
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	resp := doJSON(t, http.MethodPut, "/admin/orders/whatever/status",
		map[string]string{"status": "Processing"}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no header: status %d, want 401", resp.StatusCode)
	}
}
