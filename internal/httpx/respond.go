package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/catfecito/storefront/internal/cart"
	"github.com/catfecito/storefront/internal/catalog"
	"github.com/catfecito/storefront/internal/orders"
	"github.com/catfecito/storefront/internal/payments"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// respondError maps domain errors to HTTP statuses in one place. Client and
// business-rule errors carry their message; everything else is a generic 500
// with the detail only in the log.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validationErr  *orders.ValidationError
		unavailableErr *orders.ProductUnavailableError
		stockErr       *orders.InsufficientStockError
		cartStockErr   *cart.InsufficientStockError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &unavailableErr),
		errors.As(err, &stockErr),
		errors.As(err, &cartStockErr),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrAlreadyPaid),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, cart.ErrProductInactive),
		errors.Is(err, payments.ErrOrderHasNoItems):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, orders.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, payments.ErrGatewayUnavailable):
		logger.Error("payment gateway error", "error", err)
		writeError(w, http.StatusBadGateway, "payment system unavailable")

	default:
		logger.Error("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
