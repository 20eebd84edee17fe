package api

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/karyanastore/storefront/internal/domain/product"
)

type productResponse struct {
	ID       product.ID      `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Stock    *int64          `json:"stock"`
	ImageURL string          `json:"image_url,omitempty"`
}

// toProductResponse converts a catalog product for rendering, prefixing
// relative image paths with the configured base URL.
func (h *Handler) toProductResponse(p product.Product) productResponse {
	img := p.ImageURL
	if img != "" && h.imageBaseURL != "" && !strings.HasPrefix(img, "http") {
		img = h.imageBaseURL + img
	}
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Stock:    p.Stock,
		ImageURL: img,
	}
}

// ListProducts returns the whole catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	respondJSON(w, http.StatusOK, struct {
		Success  bool              `json:"success"`
		Products []productResponse `json:"products"`
	}{true, out})
}

type productRequest struct {
	ID       product.ID      `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Stock    *int64          `json:"stock"`
	ImageURL string          `json:"image_url"`
}

func (req *productRequest) validate(w http.ResponseWriter) bool {
	switch {
	case strings.TrimSpace(req.Name) == "":
		respondMessage(w, http.StatusBadRequest, false, "name is required")
	case req.Price.IsNegative():
		respondMessage(w, http.StatusBadRequest, false, "price cannot be negative")
	case req.Stock != nil && *req.Stock < 0:
		respondMessage(w, http.StatusBadRequest, false, "stock cannot be negative")
	default:
		return true
	}
	return false
}

// AdminCreateProduct adds a catalog item. A null stock means inventory is
// not tracked for the product.
func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID.IsZero() {
		respondMessage(w, http.StatusBadRequest, false, "id is required")
		return
	}
	if !req.validate(w) {
		return
	}

	p := &product.Product{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}
	if err := h.products.Create(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusCreated, true, "product created")
}

// AdminUpdateProduct replaces a catalog item's fields.
func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := product.ParseID(r.PathValue("id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "invalid product id")
		return
	}

	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.validate(w) {
		return
	}

	p := &product.Product{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Category: req.Category,
		Stock:    req.Stock,
		ImageURL: req.ImageURL,
	}
	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "product updated")
}

// AdminDeleteProduct removes a catalog item. Existing orders keep their
// line item snapshots.
func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := product.ParseID(r.PathValue("id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "invalid product id")
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "product deleted")
}
