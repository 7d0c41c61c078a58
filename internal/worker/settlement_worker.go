package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/observability"
	"github.com/wibank/ledger-core/internal/service"
)

// SettlementWorker clears pending transactions (deposited checks) once their
// clearing delay has elapsed.
type SettlementWorker struct {
	engine       *service.TransactionService
	store        *ledger.Store
	pollInterval time.Duration
	stopCh       chan struct{}
	stopOnce     sync.Once
}

func NewSettlementWorker(engine *service.TransactionService, store *ledger.Store) *SettlementWorker {
	return &SettlementWorker{
		engine:       engine,
		store:        store,
		pollInterval: 10 * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets the poll interval for the worker.
func (w *SettlementWorker) WithPollInterval(interval time.Duration) *SettlementWorker {
	if interval > 0 {
		w.pollInterval = interval
	}
	return w
}

// Start blocks and settles due transactions until Stop is called or the
// context is canceled.
func (w *SettlementWorker) Start(ctx context.Context) {
	zap.L().Info("settlement worker starting", zap.Duration("interval", w.pollInterval))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("settlement worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("settlement worker stop signal received")
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// Stop signals the worker to stop.
func (w *SettlementWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *SettlementWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

// ProcessOnce settles every transaction whose clearing time has elapsed.
func (w *SettlementWorker) ProcessOnce(ctx context.Context) {
	due := w.store.DueSettlements(time.Now().UTC())
	for _, ref := range due {
		_, err := w.engine.Settle(ctx, ref.AccountID, ref.TransactionID)
		if err != nil {
			// The account may have been closed or the transaction already
			// settled; both are benign for an asynchronous job.
			if errors.Is(err, models.ErrAccountNotFound) || errors.Is(err, models.ErrTransactionNotFound) {
				zap.L().Debug("settlement skipped", zap.Error(err), zap.String("transaction_id", ref.TransactionID.String()))
				continue
			}
			observability.IncrementWorkerRun("settlement", "failed")
			zap.L().Error("settlement failed", zap.Error(err), zap.String("transaction_id", ref.TransactionID.String()))
			continue
		}
		observability.IncrementWorkerRun("settlement", "success")
	}
}
