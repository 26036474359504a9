package httpx

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser injects an identity the way Auth.Require would after a valid token.
func asUser(id Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func routerFor(id Identity, register func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Group(func(g chi.Router) {
		g.Use(asUser(id))
		register(g)
	})
	return r
}

func chiRouterPublic(h *PaymentsHandler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterPublic(r)
	return r
}

func chiRouterProducts(h *ProductsHandler) *chi.Mux {
	r := chi.NewRouter()
	h.RegisterPublic(r)
	return r
}
