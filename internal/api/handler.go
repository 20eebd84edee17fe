// Package api exposes the storefront over HTTP. Handlers parse and validate
// requests, delegate to the domain layer, and render JSON envelopes; business
// rules live in internal/domain.
package api

import (
	"net/http"

	"github.com/karyanastore/storefront/internal/domain/cart"
	"github.com/karyanastore/storefront/internal/domain/offer"
	"github.com/karyanastore/storefront/internal/domain/order"
	"github.com/karyanastore/storefront/internal/domain/product"
	"github.com/karyanastore/storefront/internal/domain/user"
	"github.com/karyanastore/storefront/pkg/httpmiddleware"
)

// Config holds non-dependency handler settings.
type Config struct {
	// ImageBaseURL is prepended to relative product image paths in
	// responses. Empty leaves paths as stored.
	ImageBaseURL string
}

// Handler serves every storefront route, delegating to the domain layer.
type Handler struct {
	users    user.Repository
	carts    cart.Repository
	products product.Repository
	offers   offer.Repository

	evaluator *offer.Evaluator
	orders    *order.Service
	orderRepo order.Repository

	imageBaseURL string
}

// NewHandler constructs a Handler with its domain dependencies.
func NewHandler(
	cfg Config,
	users user.Repository,
	carts cart.Repository,
	products product.Repository,
	offers offer.Repository,
	evaluator *offer.Evaluator,
	orders *order.Service,
	orderRepo order.Repository,
) *Handler {
	return &Handler{
		users:        users,
		carts:        carts,
		products:     products,
		offers:       offers,
		evaluator:    evaluator,
		orders:       orders,
		orderRepo:    orderRepo,
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes registers every route on mux. Admin routes go through the
// requireAdmin wrapper; authLimit, when non-nil, throttles the credential
// endpoints.
func (h *Handler) Routes(mux *http.ServeMux, authLimit httpmiddleware.Middleware) {
	if authLimit == nil {
		authLimit = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /register", authLimit(http.HandlerFunc(h.Register)))
	mux.Handle("POST /login", authLimit(http.HandlerFunc(h.Login)))
	mux.HandleFunc("GET /profile/{id}", h.Profile)
	mux.HandleFunc("POST /profile/update", h.UpdateProfile)
	mux.HandleFunc("GET /user_role/{id}", h.UserRole)

	mux.HandleFunc("GET /cart/{userID}", h.GetCart)
	mux.HandleFunc("POST /cart/update", h.UpdateCart)

	mux.HandleFunc("GET /products", h.ListProducts)

	mux.HandleFunc("POST /submit-order", h.SubmitOrder)
	mux.HandleFunc("GET /order/{id}", h.GetOrder)
	mux.HandleFunc("GET /orders/{userID}", h.ListUserOrders)

	mux.HandleFunc("POST /offers/validate-code", h.ValidatePromoCode)
	mux.HandleFunc("GET /offers/applicable", h.ApplicableOffers)

	mux.HandleFunc("GET /admin/orders", h.requireAdmin(h.AdminListOrders))
	mux.HandleFunc("PUT /admin/orders/{id}/status", h.requireAdmin(h.AdminUpdateOrderStatus))
	mux.HandleFunc("GET /admin/users", h.requireAdmin(h.AdminListUsers))
	mux.HandleFunc("GET /admin/reports/sales", h.requireAdmin(h.AdminSalesReport))

	mux.HandleFunc("POST /admin/products", h.requireAdmin(h.AdminCreateProduct))
	mux.HandleFunc("PUT /admin/products/{id}", h.requireAdmin(h.AdminUpdateProduct))
	mux.HandleFunc("DELETE /admin/products/{id}", h.requireAdmin(h.AdminDeleteProduct))

	mux.HandleFunc("GET /admin/offers", h.requireAdmin(h.AdminListOffers))
	mux.HandleFunc("POST /admin/offers", h.requireAdmin(h.AdminCreateOffer))
	mux.HandleFunc("PUT /admin/offers/{id}", h.requireAdmin(h.AdminUpdateOffer))
	mux.HandleFunc("PUT /admin/offers/{id}/active", h.requireAdmin(h.AdminSetOfferActive))
}
