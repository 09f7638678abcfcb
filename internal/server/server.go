// Package server assembles the whole backend into one http.Handler: both
// in-memory stores, the auth collaborator, and the shared middleware stack.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"Shopcore/internal/auth"
	"Shopcore/internal/cart"
	"Shopcore/internal/catalog"
	"Shopcore/internal/config"
	"Shopcore/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Cfg      config.Config
	Users    auth.UserStore
	Registry *prometheus.Registry
}

// catalogSource adapts the catalog store to the cart's narrow ProductSource
// contract. Everything crossing it is a copy; the catalog's lock is released
// before Product returns.
type catalogSource struct {
	store catalog.Store
}

func (c catalogSource) Product(id int64) (cart.ProductInfo, bool) {
	p, ok := c.store.Get(id)
	if !ok {
		return cart.ProductInfo{}, false
	}
	return cart.ProductInfo{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Inventory: p.Inventory,
	}, true
}

// NewHandler wires the stores together and returns the full router.
func NewHandler(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	validate := validator.New()

	tokens := auth.NewTokenMaker(deps.Cfg.JWTSecret)

	users := deps.Users
	if users == nil {
		users = auth.NewMemStore()
	}

	catalogStore := catalog.NewStore()
	products := catalogSource{store: catalogStore}
	cartStore := cart.NewStore(products)

	authSrv := &auth.Server{
		Log:      deps.Log,
		Store:    users,
		JWT:      tokens,
		Validate: validate,
		TokenTTL: deps.Cfg.TokenTTL,
	}
	catalogSrv := &catalog.Server{
		Store:    catalogStore,
		Log:      deps.Log,
		Validate: validate,
	}
	cartSrv := &cart.Server{
		Store:    cartStore,
		Products: products,
		Log:      deps.Log,
		Validate: validate,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	if deps.Registry != nil {
		metrics := kit.NewMetrics(deps.Registry)
		r.Use(metrics.Middleware("shopcore"))

		if deps.Cfg.MetricsEnabled {
			r.With(kit.MetricsAuth(deps.Cfg.MetricsToken)).
				Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(users, deps.Log))

	authLimit := kit.NewIPRateLimiter(deps.Cfg.AuthRateLimit, deps.Cfg.AuthRateWindow)
	r.Group(func(ar chi.Router) {
		ar.Use(authLimit.Middleware)
		ar.Mount("/auth", authSrv.Routes())
	})

	r.Mount("/products", catalogSrv.Routes())

	r.Group(func(pr chi.Router) {
		pr.Use(cart.AuthJWT(tokens))
		pr.Mount("/cart", cartSrv.Routes())
	})

	return r
}

func readyz(users auth.UserStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := users.Ping(ctx); err != nil {
			if log != nil {
				log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
