package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/catfecito/storefront/internal/orders"
	"github.com/catfecito/storefront/internal/payments"
	"github.com/catfecito/storefront/internal/redisx"
)

type PreferenceService interface {
	CreatePreference(ctx context.Context, userID, orderID string) (*payments.CheckoutLink, error)
}

type WebhookProcessor interface {
	HandleNotification(ctx context.Context, n payments.Notification) error
}

type StatusSource interface {
	GetStatus(ctx context.Context, orderID, userID string) (orders.StatusPair, error)
}

type PaymentsHandler struct {
	Service    PreferenceService
	Reconciler WebhookProcessor
	Ledger     StatusSource
	Redis      *redis.Client // optional status cache
	Logger     *slog.Logger
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Post("/payments/create-preference", h.createPreference)
	r.Get("/payments/status/{orderID}", h.status)
}

func (h *PaymentsHandler) RegisterPublic(r chi.Router) {
	r.Post("/payments/webhook", h.webhook)
}

type createPreferenceRequest struct {
	OrderID string `json:"order_id"`
}

func (h *PaymentsHandler) createPreference(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req createPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	link, err := h.Service.CreatePreference(r.Context(), id.UserID, req.OrderID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// webhook receives gateway notifications. 200 acknowledges both processed
// and intentionally-ignored deliveries so the gateway does not retry-storm;
// only a genuine internal failure returns 5xx and invites redelivery.
func (h *PaymentsHandler) webhook(w http.ResponseWriter, r *http.Request) {
	var n payments.Notification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.Logger.Warn("unparseable webhook body", "error", err)
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	if err := h.Reconciler.HandleNotification(r.Context(), n); err != nil {
		h.Logger.Error("webhook processing failed", "error", err, "payment_id", n.Data.ID)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PaymentsHandler) status(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	orderID := chi.URLParam(r, "orderID")

	key := fmt.Sprintf(redisx.KeyOrderStatus, id.UserID, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	sp, err := h.Ledger.GetStatus(r.Context(), orderID, id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	body, _ := json.Marshal(sp)
	if h.Redis != nil {
		_ = h.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
