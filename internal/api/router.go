// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"balance-ledger/internal/api/handler"
	"balance-ledger/internal/metrics"
)

// RouterConfig carries the settings the HTTP layer needs.
type RouterConfig struct {
	AdminKey      string
	AuthRateLimit float64
	AuthRateBurst int
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable it only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, cfg RouterConfig, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(*logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	r.Get("/health", ledgerHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	authLimiter := NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Handler)
			r.Post("/signup", ledgerHandler.Signup)
			r.Post("/login", ledgerHandler.Login)
		})

		r.Get("/profile/{uid}", ledgerHandler.GetProfile)
		r.Patch("/profile/{uid}", ledgerHandler.UpdateProfile)
		r.Get("/deposits/{uid}", ledgerHandler.ListDeposits)
		r.Post("/deposits/attempt", ledgerHandler.RecordDepositAttempt)
		r.Post("/withdraw", ledgerHandler.Withdraw)
		r.Get("/stocks", ledgerHandler.ListStocks)
		r.Get("/percentage", ledgerHandler.GetPercentage)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdminKey(cfg.AdminKey))
			r.Get("/users", ledgerHandler.ListUsers)
			r.Post("/credit/gas", ledgerHandler.CreditGas)
			r.Post("/credit/wallet", ledgerHandler.CreditWallet)
			r.Post("/stocks", ledgerHandler.UpdateStock)
			r.Post("/percentage", ledgerHandler.UpdatePercentage)
		})
	})

	return r
}
