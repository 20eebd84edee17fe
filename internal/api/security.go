package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"

	"github.com/karyanastore/storefront/internal/domain/user"
)

type adminKey struct{}

// requireAdmin resolves the User-ID header to a user and rejects the request
// unless that user holds the admin role. The resolved admin is stored in the
// context for handlers that record an actor.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("User-ID"))
		if id == "" {
			respondMessage(w, http.StatusUnauthorized, false, "User-ID header required")
			return
		}

		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				respondMessage(w, http.StatusUnauthorized, false, "unknown user")
				return
			}
			respondError(w, r, err)
			return
		}
		if !u.IsAdmin() {
			respondMessage(w, http.StatusForbidden, false, "admin access required")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), adminKey{}, u)))
	}
}

// adminFromContext returns the admin stored by requireAdmin, or nil.
func adminFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(adminKey{}).(*user.User)
	return u
}
