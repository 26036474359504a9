package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/catfecito/storefront/internal/catalog"
)

type CatalogStore interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
	List(ctx context.Context, activeOnly bool) ([]catalog.Product, error)
	Create(ctx context.Context, p *catalog.Product) (*catalog.Product, error)
	Update(ctx context.Context, id string, p *catalog.Product) (*catalog.Product, error)
	Delete(ctx context.Context, id string) (catalog.DeleteMode, error)
}

type ProductsHandler struct {
	Store  CatalogStore
	Logger *slog.Logger
}

func (h *ProductsHandler) RegisterPublic(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
}

func (h *ProductsHandler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/products", h.listAll)
	r.Post("/products", h.create)
	r.Put("/products/{id}", h.update)
	r.Delete("/products/{id}", h.delete)
}

// list is the shopper view: active products only.
func (h *ProductsHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.List(r.Context(), true)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(products), "products": products})
}

func (h *ProductsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.List(r.Context(), false)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(products), "products": products})
}

func (h *ProductsHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	Active      *bool  `json:"is_active"`
	ImageURL    string `json:"image_url"`
}

func (req *productRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.PriceCents <= 0 {
		return "price_cents must be greater than zero"
	}
	if req.Stock < 0 {
		return "stock cannot be negative"
	}
	return ""
}

func (req *productRequest) toProduct() *catalog.Product {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &catalog.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Active:      active,
		ImageURL:    req.ImageURL,
	}
}

func (h *ProductsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.Store.Create(r.Context(), req.toProduct())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), req.toProduct())
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mode, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		respondError(w, h.Logger, err)
		return
	}
	h.Logger.Info("product deleted", "product_id", id, "mode", mode.String())
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "result": mode.String()})
}
