package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/observability"
	"github.com/wibank/ledger-core/internal/service"
)

// VerificationWorker drives the asynchronous identity-verification
// transition. It polls for accounts whose verification delay has elapsed and
// activates them. The transition itself re-checks account status under the
// account lock, so a run against a suspended or closed account is a no-op.
type VerificationWorker struct {
	accounts     *service.AccountService
	store        *ledger.Store
	pollInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewVerificationWorker(accounts *service.AccountService, store *ledger.Store) *VerificationWorker {
	return &VerificationWorker{
		accounts:     accounts,
		store:        store,
		pollInterval: time.Second,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets the poll interval for the worker.
func (w *VerificationWorker) WithPollInterval(interval time.Duration) *VerificationWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	return w
}

// Start blocks and processes due verifications until Stop is called or the
// context is canceled.
func (w *VerificationWorker) Start(ctx context.Context) {
	zap.L().Info("verification worker starting", zap.Duration("interval", w.pollInterval))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("verification worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("verification worker stop signal received")
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *VerificationWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *VerificationWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

// ProcessOnce activates every account whose verification is due. Exposed for
// tests and manual triggering.
func (w *VerificationWorker) ProcessOnce(ctx context.Context) {
	due := w.store.DueVerifications(time.Now().UTC())
	for _, accountID := range due {
		if err := w.accounts.VerifyAccount(ctx, accountID); err != nil {
			observability.IncrementWorkerRun("verification", "failed")
			zap.L().Error("verification transition failed", zap.Error(err), zap.String("account_id", accountID.String()))
			continue
		}
		observability.IncrementWorkerRun("verification", "success")
	}
}
