//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestRegisterLoginProfile(t *testing.T) {
	phone := fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000)

	resp := doJSON(t, http.MethodPost, "/register", map[string]string{
		"name":     "Ravi Kumar",
		"phone":    phone,
		"password": "secret-pw",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	reg := decodeJSON[registerResponse](t, resp)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, "/login", map[string]string{
		"identifier": phone,
		"password":   "secret-pw",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	login := decodeJSON[loginResponse](t, resp)
	resp.Body.Close()

	if login.UserID != reg.UserID {
		t.Fatalf("login user %q != registered %q", login.UserID, reg.UserID)
	}
	if login.Role != "customer" {
		t.Fatalf("role = %q, want customer", login.Role)
	}

	resp = doGet(t, "/profile/"+reg.UserID, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: status %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/login", map[string]string{
		"identifier": "admin@karyanastore.in",
		"password":   "not-the-password",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d, want 401", resp.StatusCode)
	}
}

func TestCartPersistence(t *testing.T) {
	phone := fmt.Sprintf("8%09d", time.Now().UnixNano()%1_000_000_000)
	resp := doJSON(t, http.MethodPost, "/register", map[string]string{
		"name": "Cart Tester", "phone": phone, "password": "secret-pw",
	}, nil)
	reg := decodeJSON[registerResponse](t, resp)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, "/cart/update", map[string]any{
		"user_id": reg.UserID,
		"items": []map[string]any{
			{"product_id": "1", "name": "Lux International Soap", "price": "83", "quantity": 3},
		},
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cart update: status %d", resp.StatusCode)
	}

	resp = doGet(t, "/cart/"+reg.UserID, nil)
	defer resp.Body.Close()
	body := decodeJSON[struct {
		Success bool `json:"success"`
		Cart    struct {
			Items []struct {
				ProductID string `json:"product_id"`
				Quantity  int    `json:"quantity"`
			} `json:"items"`
		} `json:"cart"`
	}](t, resp)

	if len(body.Cart.Items) != 1 || body.Cart.Items[0].Quantity != 3 {
		t.Fatalf("cart items = %+v, want one item with quantity 3", body.Cart.Items)
	}
}

func TestSalesReport(t *testing.T) {
	admin := adminHeaders(t)

	// Deliver an order so the report has something to count.
	orderID := submitTestOrder(t, "7", 1)
	resp := updateStatus(t, admin, orderID, "Delivered", "")
	resp.Body.Close()

	from := time.Now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
	to := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")
	resp = doGet(t, fmt.Sprintf("/admin/reports/sales?from=%s&to=%s", from, to), admin)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sales report: status %d", resp.StatusCode)
	}
	body := decodeJSON[struct {
		Success    bool   `json:"success"`
		TotalSales string `json:"total_sales"`
		OrderCount int64  `json:"order_count"`
	}](t, resp)

	if body.OrderCount < 1 {
		t.Fatalf("order count = %d, want at least 1", body.OrderCount)
	}
	if body.TotalSales == "0" {
		t.Fatal("total sales should be non-zero after a delivery")
	}
}
