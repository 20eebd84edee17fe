package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/karyanastore/storefront/internal/domain/offer"
	"github.com/karyanastore/storefront/internal/domain/order"
	"github.com/karyanastore/storefront/internal/domain/product"
	"github.com/karyanastore/storefront/internal/domain/user"
)

// maxBodySize caps request bodies at 1 MiB.
const maxBodySize = 1 << 20

// decodeBody parses the JSON request body into dst. A false return means an
// error envelope was already written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, false, "unable to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondMessage(w, http.StatusBadRequest, false, "invalid JSON body")
		return false
	}
	return true
}

// respondJSON writes v as the response body. v carries its own success flag.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondMessage writes the bare {"success": ..., "message": ...} envelope.
func respondMessage(w http.ResponseWriter, status int, success bool, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("success", func(e *jx.Encoder) { e.Bool(success) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	_, _ = w.Write(e.Bytes())
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged with the request context and rendered as an opaque 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *order.ValidationError
		statusErr     *order.InvalidStatusError
		belowMin      *offer.BelowMinimumError
	)
	switch {
	case errors.As(err, &validationErr):
		respondMessage(w, http.StatusBadRequest, false, validationErr.Error())
	case errors.As(err, &statusErr):
		respondMessage(w, http.StatusBadRequest, false, statusErr.Error())
	case errors.As(err, &belowMin):
		respondMessage(w, http.StatusUnprocessableEntity, false, belowMin.Error())
	case errors.Is(err, offer.ErrNotFound):
		respondMessage(w, http.StatusNotFound, false, "invalid offer code")
	case errors.Is(err, order.ErrNotFound):
		respondMessage(w, http.StatusNotFound, false, "order not found")
	case errors.Is(err, product.ErrNotFound):
		respondMessage(w, http.StatusNotFound, false, "product not found")
	case errors.Is(err, user.ErrNotFound):
		respondMessage(w, http.StatusNotFound, false, "user not found")
	case errors.Is(err, user.ErrDuplicate):
		respondMessage(w, http.StatusConflict, false, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondMessage(w, http.StatusInternalServerError, false, "internal server error")
	}
}
