package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/internal/api/handlers"
	"storefront/internal/auth"
	"storefront/pkg/metrics"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Carts     *handlers.CartHandler
	Favorites *handlers.FavoriteHandler
	Orders    *handlers.OrderHandler
}

func NewRouter(h Handlers, authenticator *auth.Authenticator, m *metrics.ServerMetrics, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}

	r.Get("/api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Get("/me", h.Auth.Me)

		r.Get("/products", h.Products.GetAll)
		r.Get("/products/{id}", h.Products.GetByID)
		r.Get("/products/{id}/sizes", h.Products.GetSizes)

		// Catalog writes are admin-only.
		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAuth(authenticator))
			r.Use(handlers.RequireAdmin)

			r.Post("/products", h.Products.Create)
			r.Put("/products/{id}", h.Products.Update)
			r.Delete("/products/{id}", h.Products.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireAuth(authenticator))

			r.Get("/cart", h.Carts.List)
			r.Post("/cart/add", h.Carts.Add)
			r.Post("/cart/remove", h.Carts.Remove)
			r.Post("/cart/clear", h.Carts.Clear)

			r.Get("/favorites", h.Favorites.List)
			r.Post("/favorites/toggle", h.Favorites.Toggle)

			r.Post("/orders/checkout", h.Orders.Checkout)
			r.Get("/orders", h.Orders.List)
			r.Get("/orders/{id}", h.Orders.Get)
		})
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
