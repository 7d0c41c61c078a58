package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/api/handler"
	"github.com/wibank/ledger-core/internal/api/middleware"
	"github.com/wibank/ledger-core/internal/api/spec"
	"github.com/wibank/ledger-core/internal/config"
	"github.com/wibank/ledger-core/internal/idempotency"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/service"
)

// Router wires services into the HTTP surface.
type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     *ledger.Store
	idemStore *idempotency.Store

	accounts     *service.AccountService
	transactions *service.TransactionService
	transfers    *service.TransferService
	deposits     *service.DepositService
	analytics    *service.AnalyticsService
}

func NewRouter(cfg *config.Config, logger *zap.Logger, store *ledger.Store, idemStore *idempotency.Store) *Router {
	return &Router{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		idemStore:    idemStore,
		accounts:     service.NewAccountService(store, cfg.VerificationDelay, cfg.WelcomeBonusMicros),
		transactions: service.NewTransactionService(store),
		transfers:    service.NewTransferService(store),
		deposits:     service.NewDepositService(store, cfg.CheckClearingDelay),
		analytics:    service.NewAnalyticsService(store),
	}
}

// Services exposes the wired service layer for callers that need direct
// access (workers, seeding).
func (api *Router) Services() (*service.AccountService, *service.TransactionService, *service.AnalyticsService) {
	return api.accounts, api.transactions, api.analytics
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	accountHandler := handler.NewAccountHandler(api.accounts, api.transactions, api.cfg.HistoryDefaultLimit)
	transactionHandler := handler.NewTransactionHandler(api.accounts, api.transactions, api.deposits)
	transferHandler := handler.NewTransferHandler(api.accounts, api.transfers)
	adminHandler := handler.NewAdminHandler(api.analytics, api.accounts)
	healthHandler := handler.NewHealthHandler(api.store)

	idem := middleware.IdempotencyMiddleware(api.idemStore, api.logger)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Get("/healthz/live", healthHandler.Live)
		r.Get("/healthz/ready", healthHandler.Ready)
		r.Get("/openapi.yaml", spec.OpenAPIHandler())
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.AuthRateLimiter(api.cfg.AuthRateLimitRPS))

		// Accounts
		r.Post("/v1/accounts", accountHandler.OpenAccount)
		r.Get("/v1/accounts", accountHandler.ListAccounts)
		r.Get("/v1/accounts/{accountNumber:WIB[0-9]+}", accountHandler.GetAccount)
		r.Get("/v1/accounts/{id}/transactions", accountHandler.GetHistory)

		// Money movement (idempotent)
		r.With(idem).Post("/v1/accounts/{id}/transactions", transactionHandler.Apply)
		r.With(idem).Post("/v1/accounts/{id}/deposits/check", transactionHandler.DepositCheck)
		r.With(idem).Post("/v1/accounts/{id}/bills", transactionHandler.PayBill)
		r.With(idem).Post("/v1/transfers", transferHandler.MakeTransfer)

		// Admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Get("/v1/admin/analytics", adminHandler.GetAnalytics)
			r.Get("/v1/admin/accounts", adminHandler.ListAccounts)
			r.Get("/v1/admin/profiles", adminHandler.ListProfiles)
			r.Patch("/v1/admin/accounts/{id}/status", adminHandler.UpdateAccountStatus)
		})
	})

	return r
}
