package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
)

var accountNumberPattern = regexp.MustCompile(`^WIB\d{8}$`)

func newAccountService(store *ledger.Store) *AccountService {
	return NewAccountService(store, 5*time.Second, domain.WelcomeBonusMicros)
}

func openRequest(kind string) OpenAccountRequest {
	return OpenAccountRequest{
		ProfileID:    uuid.New(),
		Kind:         kind,
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
		Documents: models.Documents{IDFront: "doc/front", IDBack: "doc/back"},
	}
}

func TestOpenAccountStartsPending(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)

	req := openRequest(domain.AccountKindChecking)
	acct, err := svc.OpenAccount(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.AccountStatusPendingVerification, acct.Status)
	assert.Equal(t, int64(0), acct.Balance)
	assert.Regexp(t, accountNumberPattern, acct.AccountNumber)
	assert.Equal(t, req.ProfileID, acct.ProfileID)

	profile, err := store.GetProfile(req.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileStatusPending, profile.VerificationStatus)
	assert.Equal(t, "John", profile.FirstName)

	// A verification transition is scheduled, not yet due.
	assert.Empty(t, store.DueVerifications(time.Now().UTC()))
	due := store.DueVerifications(time.Now().UTC().Add(time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, acct.ID, due[0])
}

func TestOpenAccountValidation(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	req := openRequest("money_market")
	_, err := svc.OpenAccount(ctx, req)
	require.Error(t, err)

	req = openRequest(domain.AccountKindChecking)
	req.ProfileID = uuid.Nil
	_, err = svc.OpenAccount(ctx, req)
	require.Error(t, err)
}

func TestOpenSecondAccountKeepsProfile(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	req := openRequest(domain.AccountKindChecking)
	first, err := svc.OpenAccount(ctx, req)
	require.NoError(t, err)

	// The returning customer's second request carries different profile
	// fields; the original profile wins.
	second := req
	second.Kind = domain.AccountKindSavings
	second.FirstName = "Johnny"
	acct2, err := svc.OpenAccount(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccountNumber, acct2.AccountNumber)

	profile, err := store.GetProfile(req.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "John", profile.FirstName)

	accounts := svc.GetAccountsForUser(ctx, req.ProfileID)
	assert.Len(t, accounts, 2)
}

func TestVerifyAccountActivatesChecking(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	req := openRequest(domain.AccountKindChecking)
	acct, err := svc.OpenAccount(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyAccount(ctx, acct.ID))

	got, err := svc.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, got.Status)
	// Checking accounts get no welcome bonus.
	assert.Equal(t, int64(0), got.Balance)

	profile, err := store.GetProfile(req.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileStatusVerified, profile.VerificationStatus)
}

func TestVerifyAccountPaysSavingsBonus(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, openRequest(domain.AccountKindSavings))
	require.NoError(t, err)

	require.NoError(t, svc.VerifyAccount(ctx, acct.ID))

	got, err := svc.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, got.Status)
	assert.Equal(t, int64(25_000_000), got.Balance)

	history, err := store.TransactionHistory(acct.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Welcome Bonus", history[0].Description)
	assert.Equal(t, domain.CategoryBonus, history[0].Category)
	assert.Equal(t, domain.TxKindCredit, history[0].Kind)
	assert.Equal(t, domain.TxStatusCompleted, history[0].Status)
}

func TestVerifyAccountIdempotent(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, openRequest(domain.AccountKindSavings))
	require.NoError(t, err)

	require.NoError(t, svc.VerifyAccount(ctx, acct.ID))
	require.NoError(t, svc.VerifyAccount(ctx, acct.ID))

	got, err := svc.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	// The bonus is paid exactly once.
	assert.Equal(t, int64(25_000_000), got.Balance)
	history, err := store.TransactionHistory(acct.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSuspendCancelsActivation(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	acct, err := svc.OpenAccount(ctx, openRequest(domain.AccountKindSavings))
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, acct.ID, domain.AccountStatusSuspended)
	require.NoError(t, err)

	// The worker's delayed transition finds the account no longer pending
	// and leaves it alone.
	require.NoError(t, svc.VerifyAccount(ctx, acct.ID))

	got, err := svc.GetAccountByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusSuspended, got.Status)
	assert.Equal(t, int64(0), got.Balance)
}

func TestUpdateStatusValidation(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	acct := seedAccount(t, store, domain.AccountKindChecking, domain.AccountStatusActive)

	_, err := svc.UpdateStatus(ctx, acct.ID, "frozen")
	require.Error(t, err)

	updated, err := svc.UpdateStatus(ctx, acct.ID, domain.AccountStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusClosed, updated.Status)

	_, err = svc.UpdateStatus(ctx, uuid.New(), domain.AccountStatusActive)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestGetAccountByNumber(t *testing.T) {
	store := ledger.NewStore()
	svc := newAccountService(store)
	ctx := context.Background()

	acct := seedAccount(t, store, domain.AccountKindChecking, domain.AccountStatusActive)

	got, err := svc.GetAccount(ctx, acct.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.GetAccount(ctx, "WIB00000000")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}
