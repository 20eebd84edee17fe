//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestValidatePromoCode(t *testing.T) {
	// Seeded SAVE10: 10% off above 299, capped at 100.
	resp := doJSON(t, http.MethodPost, "/offers/validate-code", map[string]string{
		"code":       "save10",
		"cart_total": "500",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("validate code: status %d", resp.StatusCode)
	}
	body := decodeJSON[validateCodeResponse](t, resp)
	if body.Discount != "50" {
		t.Fatalf("discount = %s, want 50", body.Discount)
	}
	if body.FinalTotal != "450" {
		t.Fatalf("final total = %s, want 450", body.FinalTotal)
	}
}

func TestValidatePromoCodeCapApplies(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/offers/validate-code", map[string]string{
		"code":       "SAVE10",
		"cart_total": "2000",
	}, nil)
	defer resp.Body.Close()

	body := decodeJSON[validateCodeResponse](t, resp)
	if body.Discount != "100" {
		t.Fatalf("capped discount = %s, want 100", body.Discount)
	}
}

func TestValidatePromoCodeBelowMinimum(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/offers/validate-code", map[string]string{
		"code":       "SAVE10",
		"cart_total": "250",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("below minimum: status %d, want 422", resp.StatusCode)
	}
}

func TestValidatePromoCodeUnknown(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/offers/validate-code", map[string]string{
		"code":       "NOSUCHCODE",
		"cart_total": "500",
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown code: status %d, want 404", resp.StatusCode)
	}
}

func TestApplicableOffers(t *testing.T) {
	// Seeded automatic offer: flat 50 off above 499.
	resp := doGet(t, "/offers/applicable?total=600", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("applicable offers: status %d", resp.StatusCode)
	}
	body := decodeJSON[struct {
		Success      bool   `json:"success"`
		BestOfferID  string `json:"best_offer_id"`
		BestDiscount string `json:"best_discount"`
	}](t, resp)

	if body.BestOfferID != "launch-flat50" {
		t.Fatalf("best offer = %q, want launch-flat50", body.BestOfferID)
	}
	if body.BestDiscount != "50" {
		t.Fatalf("best discount = %s, want 50", body.BestDiscount)
	}
}

func TestApplicableOffersBelowThreshold(t *testing.T) {
	resp := doGet(t, "/offers/applicable?total=100", nil)
	defer resp.Body.Close()

	body := decodeJSON[struct {
		Success bool  `json:"success"`
		Offers  []any `json:"offers"`
	}](t, resp)
	if len(body.Offers) != 0 {
		t.Fatalf("offers below threshold = %d, want 0", len(body.Offers))
	}
}
