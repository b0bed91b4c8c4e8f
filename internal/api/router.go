package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Fund-Ledger-Backend/internal/api/middleware"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/auth"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/config"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// Dependencies are the services and credentials the router wires into handlers.
type Dependencies struct {
	System   *service.SystemService
	Fund     *service.FundService
	Category *service.CategoryService
	Ledger   *service.LedgerService
	Requests *service.CapitalRequestService
	Freeze   *service.FreezeService
	Verifier auth.Verifier
	Sessions *auth.AdminSessions
	Logger   *slog.Logger
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Dependencies, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	loginLimiter := custommiddleware.NewRateLimiter(cfg.RateLimit.LoginRPS, cfg.RateLimit.LoginBurst)
	submitLimiter := custommiddleware.NewRateLimiter(cfg.RateLimit.SubmitRPS, cfg.RateLimit.SubmitBurst)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(deps.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/public", func(r chi.Router) {
			publicHandler := handlers.NewPublicHandler(deps.Fund, deps.Category)
			r.Get("/pool-metrics", publicHandler.PoolMetrics)
			r.Get("/category-pnl", publicHandler.CategoryPnL)
			r.Get("/allocation", publicHandler.Allocation)
			r.Get("/nav-history", publicHandler.NavHistory)
			r.Get("/positions", publicHandler.Positions)
		})

		r.Route("/investor", func(r chi.Router) {
			investorHandler := handlers.NewInvestorHandler(deps.Ledger, deps.Requests)
			r.Use(custommiddleware.InvestorAuth(deps.Verifier))

			r.Get("/ledger", investorHandler.Ledger)
			r.Get("/requests", investorHandler.Requests)
			r.With(submitLimiter.Handler).Post("/deposit", investorHandler.Deposit)
			r.With(submitLimiter.Handler).Post("/withdraw", investorHandler.Withdraw)
		})

		r.Route("/admin", func(r chi.Router) {
			adminHandler := handlers.NewAdminHandler(deps.Sessions, deps.Freeze, deps.Requests, handlers.AdminCookieConfig{
				Name:   cfg.Auth.CookieName,
				Secure: cfg.Auth.SecureCookie,
			})

			r.With(loginLimiter.Handler).Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.AdminAuth(deps.Sessions, cfg.Auth.CookieName))

				r.Get("/me", adminHandler.Me)
				r.Post("/freeze-on", adminHandler.FreezeOn)
				r.Post("/freeze-off", adminHandler.FreezeOff)
				r.Get("/requests", adminHandler.Requests)

				r.Route("/requests/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Post("/settle", adminHandler.Settle)
				})
			})
		})
	})

	return r
}
