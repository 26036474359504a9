package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catfecito/storefront/internal/orders"
)

type OrderLedger interface {
	CreateFromCart(ctx context.Context, userID string, addr orders.ShippingAddress) (*orders.Order, error)
	GetForUser(ctx context.Context, orderID, userID string) (*orders.Order, error)
	GetAny(ctx context.Context, orderID string) (*orders.Order, error)
	ListForUser(ctx context.Context, userID string) ([]orders.Order, error)
	ListAll(ctx context.Context) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, orderID string, to orders.Status) (*orders.Order, error)
	Cancel(ctx context.Context, orderID, userID string, isAdmin bool) (*orders.Order, error)
}

type OrdersHandler struct {
	Ledger OrderLedger
	Logger *slog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.listMine)
	r.Get("/orders/{id}", h.getMine)
	r.Patch("/orders/{id}/cancel", h.cancel)
}

func (h *OrdersHandler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/orders", h.listAll)
	r.Get("/admin/orders/{id}", h.getAny)
	r.Patch("/admin/orders/{id}/status", h.updateStatus)
}

// create freezes the caller's cart into a pending order. Stock stays
// untouched and the cart stays intact until the payment is confirmed.
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var addr orders.ShippingAddress
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Ledger.CreateFromCart(r.Context(), id.UserID, addr)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	h.Logger.Info("order created", "order_id", order.ID, "user_id", id.UserID, "total_cents", order.TotalCents)
	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	list, err := h.Ledger.ListForUser(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "orders": list})
}

func (h *OrdersHandler) getMine(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	order, err := h.Ledger.GetForUser(r.Context(), chi.URLParam(r, "id"), id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	order, err := h.Ledger.Cancel(r.Context(), chi.URLParam(r, "id"), id.UserID, id.IsAdmin())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	h.Logger.Info("order cancelled", "order_id", order.ID, "by", id.UserID)
	writeJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) listAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.Ledger.ListAll(r.Context())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(list), "orders": list})
}

func (h *OrdersHandler) getAny(w http.ResponseWriter, r *http.Request) {
	order, err := h.Ledger.GetAny(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Ledger.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	h.Logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	writeJSON(w, http.StatusOK, order)
}
