package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
)

// seedAccount inserts a profile and account directly into the store, skipping
// the opening flow, so tests can start from an arbitrary state.
func seedAccount(t *testing.T, store *ledger.Store, kind, status string) *models.Account {
	t.Helper()

	now := time.Now().UTC()
	profileID := uuid.New()
	profile := &models.CustomerProfile{
		ID:                 profileID,
		FirstName:          "Jane",
		LastName:           "Rivers",
		Email:              "jane.rivers@example.com",
		VerificationStatus: domain.ProfileStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	account := &models.Account{
		ID:            uuid.New(),
		ProfileID:     profileID,
		AccountNumber: store.NewAccountNumber(),
		Kind:          kind,
		Balance:       0,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.CreateAccount(profile, account))
	return account
}

// fund posts a completed credit so the account has a spendable balance and a
// consistent history.
func fund(t *testing.T, store *ledger.Store, accountID uuid.UUID, amount int64) {
	t.Helper()

	err := store.WithAccount(accountID, func(h *ledger.Handle) error {
		_, postErr := postTransaction(h, domain.TxKindCredit, amount, "Initial Deposit", domain.CategoryDeposit, domain.TxStatusCompleted, time.Now().UTC())
		return postErr
	})
	require.NoError(t, err)
}
