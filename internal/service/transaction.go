package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/observability"
)

// TransactionService is the single path by which account balances change.
// Every higher-level operation (transfer, bill pay, check deposit, welcome
// bonus) is expressed as one or more postings through it.
type TransactionService struct {
	store *ledger.Store
}

func NewTransactionService(store *ledger.Store) *TransactionService {
	return &TransactionService{store: store}
}

// Apply posts a completed credit or debit against the account.
func (s *TransactionService) Apply(ctx context.Context, accountID uuid.UUID, kind string, amount int64, description, category string) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		var postErr error
		tx, postErr = postTransaction(h, kind, amount, description, category, domain.TxStatusCompleted, time.Now().UTC())
		return postErr
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Settle transitions a pending transaction to completed. Settling a
// transaction that no longer exists or is already completed returns
// ErrTransactionNotFound; callers running asynchronously treat that as a
// no-op.
func (s *TransactionService) Settle(ctx context.Context, accountID, transactionID uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		settled, ok := h.Settle(transactionID)
		if !ok {
			return models.ErrTransactionNotFound
		}
		tx = settled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// History returns the account's transactions, most-recent-first, bounded by
// limit.
func (s *TransactionService) History(ctx context.Context, accountID uuid.UUID, limit int) ([]models.Transaction, error) {
	return s.store.TransactionHistory(accountID, limit)
}

// postTransaction applies a balance mutation and appends the immutable record
// while the caller holds the account's critical section. The stored balance is
// the post-mutation snapshot.
func postTransaction(h *ledger.Handle, kind string, amount int64, description, category, status string, now time.Time) (models.Transaction, error) {
	if amount <= 0 {
		return models.Transaction{}, models.ErrInvalidAmount
	}

	acct := h.Account()
	switch kind {
	case domain.TxKindDebit:
		if amount > acct.Balance {
			observability.IncrementInsufficientFunds()
			return models.Transaction{}, models.ErrInsufficientFunds
		}
		acct.Balance -= amount
	case domain.TxKindCredit:
		acct.Balance += amount
	default:
		return models.Transaction{}, fmt.Errorf("invalid transaction kind %q", kind)
	}

	tx := models.Transaction{
		ID:          uuid.New(),
		AccountID:   acct.ID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Category:    category,
		Balance:     acct.Balance,
		Status:      status,
		CreatedAt:   now,
	}
	h.Prepend(tx)
	acct.UpdatedAt = now

	observability.IncrementTransactionPosted(kind, category)
	return tx, nil
}

// reverseTransaction undoes a posting within the same critical section. Used
// by the transfer compensation path.
func reverseTransaction(h *ledger.Handle, original models.Transaction, now time.Time) (models.Transaction, error) {
	kind := domain.TxKindCredit
	if original.Kind == domain.TxKindCredit {
		kind = domain.TxKindDebit
	}
	return postTransaction(h, kind, original.Amount,
		fmt.Sprintf("Reversal of %s", original.ID), original.Category, domain.TxStatusCompleted, now)
}
