package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catfecito/storefront/internal/cart"
)

type CartStore interface {
	List(ctx context.Context, userID string) (*cart.View, error)
	Add(ctx context.Context, userID, productID string, qty int) (*cart.Line, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (*cart.Line, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) (int64, error)
	Merge(ctx context.Context, userID string, lines []cart.MergeLine) (int, error)
}

type CartHandler struct {
	Store  CartStore
	Logger *slog.Logger
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart/items", h.add)
	r.Patch("/cart/items/{id}", h.update)
	r.Delete("/cart/items/{id}", h.remove)
	r.Delete("/cart", h.clear)
	r.Post("/cart/merge", h.merge)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	v, err := h.Store.List(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "quantity must be greater than zero")
		return
	}

	line, err := h.Store.Add(r.Context(), id.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	itemID := chi.URLParam(r, "id")

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be greater than zero")
		return
	}

	line, err := h.Store.UpdateQuantity(r.Context(), id.UserID, itemID, req.Quantity)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())
	itemID := chi.URLParam(r, "id")

	if err := h.Store.Remove(r.Context(), id.UserID, itemID); err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": itemID})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	n, err := h.Store.Clear(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted_count": n})
}

type mergeCartRequest struct {
	Items []cart.MergeLine `json:"items"`
}

// merge folds a guest cart into the server cart at login. One bulk call,
// one transaction; after it the server cart is the sole source of truth.
func (h *CartHandler) merge(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req mergeCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := h.Store.Merge(r.Context(), id.UserID, req.Items)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}

	v, err := h.Store.List(r.Context(), id.UserID)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"merged_count": merged, "cart": v})
}
