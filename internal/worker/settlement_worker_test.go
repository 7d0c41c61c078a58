package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/service"
)

func TestSettlementWorkerClearsDueDeposits(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, 0)
	engine := service.NewTransactionService(store)
	deposits := service.NewDepositService(store, 0)
	w := NewSettlementWorker(engine, store)
	ctx := context.Background()

	acct := openTestAccount(t, accounts, domain.AccountKindChecking)
	NewVerificationWorker(accounts, store).ProcessOnce(ctx)

	// Zero clearing delay makes the deposit immediately due.
	tx, err := deposits.DepositCheck(ctx, acct.ID, 75_000_000, "img/front.jpg", "img/back.jpg")
	require.NoError(t, err)
	require.Equal(t, domain.TxStatusPending, tx.Status)

	w.ProcessOnce(ctx)

	history, err := store.TransactionHistory(acct.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TxStatusCompleted, history[0].Status)

	// The due entry was consumed; nothing left to settle.
	assert.Empty(t, store.DueSettlements(time.Now().UTC().Add(time.Hour)))
}

func TestSettlementWorkerHonorsClearingDelay(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, 0)
	engine := service.NewTransactionService(store)
	deposits := service.NewDepositService(store, 24*time.Hour)
	w := NewSettlementWorker(engine, store)
	ctx := context.Background()

	acct := openTestAccount(t, accounts, domain.AccountKindChecking)
	NewVerificationWorker(accounts, store).ProcessOnce(ctx)

	_, err := deposits.DepositCheck(ctx, acct.ID, 75_000_000, "img/front.jpg", "img/back.jpg")
	require.NoError(t, err)

	w.ProcessOnce(ctx)

	history, err := store.TransactionHistory(acct.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TxStatusPending, history[0].Status)
}

func TestReconciliationWorkerRunOnce(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, domain.WelcomeBonusMicros)
	analytics := service.NewAnalyticsService(store)
	w := NewReconciliationWorker(analytics).WithInterval(time.Hour)
	ctx := context.Background()

	openTestAccount(t, accounts, domain.AccountKindSavings)
	NewVerificationWorker(accounts, store).ProcessOnce(ctx)

	// A clean ledger reconciles without error or panic.
	w.runOnce(ctx)
}
