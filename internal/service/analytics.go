package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
	"github.com/wibank/ledger-core/internal/observability"
)

// AnalyticsService provides read-only aggregation over the ledger for
// administrative reporting.
type AnalyticsService struct {
	store *ledger.Store
}

func NewAnalyticsService(store *ledger.Store) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Analytics is the administrative reporting summary.
type Analytics struct {
	TotalAccounts        int    `json:"total_accounts"`
	ActiveAccounts       int    `json:"active_accounts"`
	PendingVerifications int    `json:"pending_verifications"`
	TotalBalanceMicros   int64  `json:"total_balance_micros"`
	TotalBalance         string `json:"total_balance"`
}

// Summary computes account counts and the sum of non-negative balances from a
// single consistent snapshot of the store.
func (s *AnalyticsService) Summary(ctx context.Context) Analytics {
	accounts := s.store.Snapshot()

	out := Analytics{TotalAccounts: len(accounts)}
	for _, acct := range accounts {
		switch acct.Status {
		case domain.AccountStatusActive:
			out.ActiveAccounts++
		case domain.AccountStatusPendingVerification:
			out.PendingVerifications++
		}
		if acct.Balance > 0 {
			out.TotalBalanceMicros += acct.Balance
		}
	}
	out.TotalBalance = domain.NewMoney(out.TotalBalanceMicros).String()

	observability.SetPendingVerifications(int64(out.PendingVerifications))
	return out
}

// ListAccounts returns a consistent snapshot of every account.
func (s *AnalyticsService) ListAccounts(ctx context.Context) []models.Account {
	return s.store.Snapshot()
}

// ListProfiles returns a snapshot of every customer profile.
func (s *AnalyticsService) ListProfiles(ctx context.Context) []models.CustomerProfile {
	return s.store.SnapshotProfiles()
}

// Reconcile verifies the audit-trail invariants account by account: the
// latest transaction's stored balance must equal the account balance, and the
// balance must equal the net of all credits and debits. Divergence is logged;
// it never interrupts service.
func (s *AnalyticsService) Reconcile(ctx context.Context) error {
	for _, acct := range s.store.Snapshot() {
		accountID := acct.ID
		err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
			balance := h.Account().Balance
			history := h.History(0)

			if len(history) > 0 && history[0].Balance != balance {
				zap.L().Error("CRITICAL: balance snapshot divergence",
					zap.String("account_id", accountID.String()),
					zap.Int64("account_balance", balance),
					zap.Int64("latest_snapshot", history[0].Balance),
				)
				return nil
			}

			var net int64
			for _, tx := range history {
				if tx.Kind == domain.TxKindCredit {
					net += tx.Amount
				} else {
					net -= tx.Amount
				}
			}
			if net != balance {
				zap.L().Error("CRITICAL: ledger reconstruction divergence",
					zap.String("account_id", accountID.String()),
					zap.Int64("account_balance", balance),
					zap.Int64("history_net", net),
				)
			}
			return nil
		})
		if err != nil && err != models.ErrAccountNotFound {
			return err
		}
	}
	return nil
}
