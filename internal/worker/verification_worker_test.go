package worker

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/service"
)

func openTestAccount(t *testing.T, svc *service.AccountService, kind string) *models.Account {
	t.Helper()

	acct, err := svc.OpenAccount(context.Background(), service.OpenAccountRequest{
		ProfileID: uuid.New(),
		Kind:      kind,
		FirstName: "Test",
		LastName:  "Customer",
		Email:     "test.customer@example.com",
	})
	require.NoError(t, err)
	return acct
}

func TestVerificationWorkerActivatesDueAccounts(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, domain.WelcomeBonusMicros)
	w := NewVerificationWorker(accounts, store)
	ctx := context.Background()

	acct := openTestAccount(t, accounts, domain.AccountKindSavings)

	// Zero delay makes the transition immediately due.
	w.ProcessOnce(ctx)

	got, err := accounts.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, got.Status)
	assert.Equal(t, int64(domain.WelcomeBonusMicros), got.Balance)

	// The due entry was consumed; a second run changes nothing.
	w.ProcessOnce(ctx)
	history, err := store.TransactionHistory(acct.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestVerificationWorkerHonorsDelay(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, time.Hour, 0)
	w := NewVerificationWorker(accounts, store)
	ctx := context.Background()

	acct := openTestAccount(t, accounts, domain.AccountKindChecking)

	w.ProcessOnce(ctx)

	got, err := accounts.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusPendingVerification, got.Status)
}

func TestVerificationWorkerSkipsSuspendedAccount(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, domain.WelcomeBonusMicros)
	w := NewVerificationWorker(accounts, store)
	ctx := context.Background()

	acct := openTestAccount(t, accounts, domain.AccountKindSavings)
	_, err := accounts.UpdateStatus(ctx, acct.ID, domain.AccountStatusSuspended)
	require.NoError(t, err)

	w.ProcessOnce(ctx)

	got, err := accounts.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, got.Status)
	assert.Equal(t, int64(0), got.Balance)
}

func TestVerificationWorkerRunStops(t *testing.T) {
	store := ledger.NewStore()
	accounts := service.NewAccountService(store, 0, 0)
	w := NewVerificationWorker(accounts, store).WithPollInterval(time.Millisecond)

	stop := w.Run(context.Background())
	acct := openTestAccount(t, accounts, domain.AccountKindChecking)

	require.Eventually(t, func() bool {
		got, err := accounts.GetAccountByID(context.Background(), acct.ID)
		return err == nil && got.Status == domain.AccountStatusActive
	}, time.Second, 5*time.Millisecond)

	stop()
	// Stop is safe to call repeatedly.
	stop()
}
