package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bimakw/dex-swap/internal/presentation/handlers"
)

// NewRouter builds the HTTP API of a
func NewRouter(a *App, version string) http.Handler {
	healthHandler := handlers.NewHealthHandler(version, a.Registry)
	networkHandler := handlers.NewNetworkHandler(a.Registry)
	tokenHandler := handlers.NewTokenHandler(a.Registry, a.Tokens)
	fxHandler := handlers.NewFxHandler(a.FxRates)
	quoteHandler := handlers.NewQuoteHandler(a.Registry, a.Swaps, a.PriceImpact, a.Config.DefaultSlippage)
	sessionHandler := handlers.NewSessionHandler(a.Registry, a.Sessions, a.Swaps, a.PriceImpact, a.Config.DefaultSlippage)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.Config.HTTPTimeout + 5*time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/networks", networkHandler.List)
		r.Get("/networks/{chain}", networkHandler.Get)

		r.Get("/tokens/{chain}", tokenHandler.Tokens)
		r.Get("/price/{chain}/{tokenAddress}", tokenHandler.Price)

		r.Get("/fx-rates", fxHandler.List)
		r.Get("/fx-rates/{currency}", fxHandler.Get)

		r.Post("/swap/simulate", quoteHandler.Simulate)
		r.Post("/swap/build", quoteHandler.Build)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/{id}", sessionHandler.Get)
			r.Delete("/{id}", sessionHandler.Delete)
			r.Post("/{id}/quote", sessionHandler.Quote)
			r.Post("/{id}/build", sessionHandler.Build)
		})
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
