package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/api"
	"github.com/wibank/ledger-core/internal/api/middleware"
	"github.com/wibank/ledger-core/internal/config"
	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/idempotency"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/observability"
	"github.com/wibank/ledger-core/internal/service"
	"github.com/wibank/ledger-core/internal/worker"
)

// Run bootstraps the HTTP server and background workers, blocking until
// shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := ledger.NewStore()
	idemStore := idempotency.NewStore(cfg.IdempotencyTTL)

	router := api.NewRouter(cfg, logger, store, idemStore)
	accounts, transactions, analytics := router.Services()

	if cfg.SeedDemoAccount {
		if err := seedDemoAccount(ctx, accounts); err != nil {
			return fmt.Errorf("seed demo account: %w", err)
		}
		logger.Info("demo account seeded")
	}

	verificationWorker := worker.NewVerificationWorker(accounts, store).
		WithPollInterval(cfg.VerificationInterval)
	settlementWorker := worker.NewSettlementWorker(transactions, store).
		WithPollInterval(cfg.SettlementInterval)
	reconciliationWorker := worker.NewReconciliationWorker(analytics).
		WithInterval(cfg.ReconciliationInterval)

	stopVerification := verificationWorker.Run(ctx)
	stopSettlement := settlementWorker.Run(ctx)
	stopReconciliation := reconciliationWorker.Run(ctx)
	logger.Info("workers started",
		zap.Duration("verification_interval", cfg.VerificationInterval),
		zap.Duration("settlement_interval", cfg.SettlementInterval),
		zap.Duration("reconciliation_interval", cfg.ReconciliationInterval))

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping workers")
	stopVerification()
	stopSettlement()
	stopReconciliation()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

// seedDemoAccount opens a checking account for a fixed demo profile so a
// fresh process has data to exercise. The account activates through the
// normal verification worker path.
func seedDemoAccount(ctx context.Context, accounts *service.AccountService) error {
	demoProfileID := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	_, err := accounts.OpenAccount(ctx, service.OpenAccountRequest{
		ProfileID:    demoProfileID,
		Kind:         domain.AccountKindChecking,
		FirstName:    "John",
		LastName:     "Doe",
		Email:        "john.doe@example.com",
		Phone:        "+15551234567",
		DateOfBirth:  "1990-01-15",
		GovernmentID: "123-45-6789",
		Address: models.Address{
			Street:  "123 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
		},
		Documents: models.Documents{
			IDFront: "seed/id-front",
			IDBack:  "seed/id-back",
		},
	})
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
