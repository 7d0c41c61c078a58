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
)

// DepositService posts mobile check deposits and bill payments on top of the
// transaction engine.
type DepositService struct {
	store         *ledger.Store
	clearingDelay time.Duration
}

func NewDepositService(store *ledger.Store, clearingDelay time.Duration) *DepositService {
	return &DepositService{store: store, clearingDelay: clearingDelay}
}

// DepositCheck posts a pending credit for a mobile check deposit and
// schedules its settlement after the clearing delay. The image arguments are
// opaque references into external document storage.
func (s *DepositService) DepositCheck(ctx context.Context, accountID uuid.UUID, amount int64, frontImage, backImage string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if frontImage == "" || backImage == "" {
		return nil, errors.New("both check images are required")
	}

	var tx models.Transaction
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		now := time.Now().UTC()
		posted, postErr := postTransaction(h, domain.TxKindCredit, amount, "Mobile Check Deposit", domain.CategoryDeposit, domain.TxStatusPending, now)
		if postErr != nil {
			return postErr
		}
		h.ScheduleSettlement(posted.ID, now.Add(s.clearingDelay))
		tx = posted
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("check deposit posted",
		zap.String("account_id", accountID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("front_image", frontImage),
		zap.String("back_image", backImage),
	)
	return &tx, nil
}

// PayBill debits the account for a bill payment to the named payee.
func (s *DepositService) PayBill(ctx context.Context, accountID uuid.UUID, payee string, amount int64) (*models.Transaction, error) {
	if payee == "" {
		return nil, errors.New("payee is required")
	}

	var tx models.Transaction
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		var postErr error
		tx, postErr = postTransaction(h, domain.TxKindDebit, amount,
			fmt.Sprintf("Bill Payment - %s", payee), domain.CategoryBillPayment, domain.TxStatusCompleted, time.Now().UTC())
		return postErr
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
