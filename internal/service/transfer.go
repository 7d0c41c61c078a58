package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/observability"
)

// TransferService coordinates a paired debit+credit across two accounts as a
// single logical transfer.
type TransferService struct {
	store *ledger.Store
}

func NewTransferService(store *ledger.Store) *TransferService {
	return &TransferService{store: store}
}

// TransferResult carries both legs of a completed transfer.
type TransferResult struct {
	Debit  models.Transaction `json:"debit"`
	Credit models.Transaction `json:"credit"`
}

// Transfer moves amount from the source account to the account identified by
// its external number. Both legs are posted inside one critical section
// holding both account locks (acquired in canonical ID order), so no reader
// can observe the debit without the credit.
func (s *TransferService) Transfer(ctx context.Context, fromAccountID uuid.UUID, toAccountNumber string, amount int64, description string) (*TransferResult, error) {
	if amount <= 0 {
		observability.IncrementTransfer("invalid_amount")
		return nil, models.ErrInvalidAmount
	}

	dest, err := s.store.GetAccountByNumber(toAccountNumber)
	if err != nil {
		observability.IncrementTransfer("not_found")
		return nil, err
	}
	if dest.ID == fromAccountID {
		observability.IncrementTransfer("failed")
		return nil, errors.New("cannot transfer to the same account")
	}

	var result TransferResult
	err = s.store.WithAccounts(fromAccountID, dest.ID, func(from, to *ledger.Handle) error {
		if from.Account().Status != domain.AccountStatusActive {
			return fmt.Errorf("source account: %w", models.ErrAccountNotActive)
		}
		if to.Account().Status != domain.AccountStatusActive {
			return fmt.Errorf("destination account: %w", models.ErrAccountNotActive)
		}
		if amount > from.Account().Balance {
			return models.ErrInsufficientFunds
		}

		now := time.Now().UTC()
		debitDesc := fmt.Sprintf("Transfer to %s", to.Account().AccountNumber)
		creditDesc := fmt.Sprintf("Transfer from %s", from.Account().AccountNumber)
		if description != "" {
			debitDesc = fmt.Sprintf("%s - %s", debitDesc, description)
			creditDesc = fmt.Sprintf("%s - %s", creditDesc, description)
		}

		debit, postErr := postTransaction(from, domain.TxKindDebit, amount, debitDesc, domain.CategoryTransfer, domain.TxStatusCompleted, now)
		if postErr != nil {
			return postErr
		}

		credit, postErr := postTransaction(to, domain.TxKindCredit, amount, creditDesc, domain.CategoryTransfer, domain.TxStatusCompleted, now)
		if postErr != nil {
			// Compensate the debit so money is never left in flight.
			if _, revErr := reverseTransaction(from, debit, now); revErr != nil {
				zap.L().Error("transfer compensation failed",
					zap.Error(revErr),
					zap.String("debit_id", debit.ID.String()),
					zap.String("from_account", from.Account().ID.String()),
				)
			}
			return fmt.Errorf("%w: %v", models.ErrTransferPartialFailure, postErr)
		}

		result = TransferResult{Debit: debit, Credit: credit}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInsufficientFunds):
			observability.IncrementTransfer("insufficient_funds")
		case errors.Is(err, models.ErrAccountNotFound):
			observability.IncrementTransfer("not_found")
		default:
			observability.IncrementTransfer("failed")
		}
		return nil, err
	}

	observability.IncrementTransfer("success")
	return &result, nil
}
