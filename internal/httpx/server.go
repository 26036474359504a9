package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *Auth
	Cart     *CartHandler
	Orders   *OrdersHandler
	Payments *PaymentsHandler
	Products *ProductsHandler
}

// NewRouter assembles the full route table. The webhook and the shopper
// catalog are public; everything else needs a bearer token, and the admin
// surface additionally needs the admin role.
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		h.Payments.RegisterPublic(api)
		h.Products.RegisterPublic(api)

		api.Group(func(priv chi.Router) {
			priv.Use(h.Auth.Require)
			h.Cart.Register(priv)
			h.Orders.Register(priv)
			h.Payments.Register(priv)

			priv.Group(func(adm chi.Router) {
				adm.Use(RequireRole("admin"))
				h.Orders.RegisterAdmin(adm)
				h.Products.RegisterAdmin(adm)
			})
		})
	})

	return r
}
