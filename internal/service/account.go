package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/ledger"
	"github.com/wibank/ledger-core/internal/models"
)

const openAccountMaxAttempts = 5

// AccountService owns the account lifecycle: opening in a pending state,
// the asynchronous verification transition, and administrative status
// changes.
type AccountService struct {
	store             *ledger.Store
	verificationDelay time.Duration
	welcomeBonus      int64
}

func NewAccountService(store *ledger.Store, verificationDelay time.Duration, welcomeBonusMicros int64) *AccountService {
	return &AccountService{
		store:             store,
		verificationDelay: verificationDelay,
		welcomeBonus:      welcomeBonusMicros,
	}
}

// OpenAccountRequest holds the profile data collected at account opening.
type OpenAccountRequest struct {
	ProfileID    uuid.UUID
	Kind         string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	DateOfBirth  string
	GovernmentID string
	Address      models.Address
	Documents    models.Documents
}

// OpenAccount creates a profile and account atomically, with the account
// pending verification and a zero balance. The verification transition is
// scheduled for pickup by the verification worker after the configured delay.
func (s *AccountService) OpenAccount(ctx context.Context, req OpenAccountRequest) (*models.Account, error) {
	if !domain.ValidAccountKind(req.Kind) {
		return nil, fmt.Errorf("invalid account kind %q", req.Kind)
	}
	if req.ProfileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}

	now := time.Now().UTC()
	profile := &models.CustomerProfile{
		ID:                 req.ProfileID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		DateOfBirth:        req.DateOfBirth,
		GovernmentID:       req.GovernmentID,
		Address:            req.Address,
		Documents:          req.Documents,
		VerificationStatus: domain.ProfileStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	account := &models.Account{
		ID:        uuid.New(),
		ProfileID: req.ProfileID,
		Kind:      req.Kind,
		Balance:   0,
		Status:    domain.AccountStatusPendingVerification,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Number generation collisions are retried here and never surfaced.
	var err error
	for attempt := 0; attempt < openAccountMaxAttempts; attempt++ {
		account.AccountNumber = s.store.NewAccountNumber()
		err = s.store.CreateAccount(profile, account)
		if err == nil {
			break
		}
		if err != models.ErrDuplicateAccountNumber {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("allocate account number: %w", err)
	}

	if err := s.store.ScheduleVerification(account.ID, now.Add(s.verificationDelay)); err != nil {
		return nil, err
	}

	zap.L().Info("account opened",
		zap.String("account_id", account.ID.String()),
		zap.String("account_number", account.AccountNumber),
		zap.String("kind", account.Kind),
	)
	return account, nil
}

// VerifyAccount applies the pending_verification -> active transition. It is
// idempotent: an account that is no longer pending (already active, or closed
// or suspended out of band) is left untouched. A savings account receives its
// one-time welcome bonus on activation.
func (s *AccountService) VerifyAccount(ctx context.Context, accountID uuid.UUID) error {
	var profileID uuid.UUID
	var activated bool
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		acct := h.Account()
		if acct.Status != domain.AccountStatusPendingVerification {
			return nil
		}

		now := time.Now().UTC()
		acct.Status = domain.AccountStatusActive
		acct.UpdatedAt = now
		profileID = acct.ProfileID
		activated = true

		if acct.Kind == domain.AccountKindSavings && s.welcomeBonus > 0 {
			if _, err := postTransaction(h, domain.TxKindCredit, s.welcomeBonus, "Welcome Bonus", domain.CategoryBonus, domain.TxStatusCompleted, now); err != nil {
				return fmt.Errorf("post welcome bonus: %w", err)
			}
		}
		return nil
	})
	if err != nil || !activated {
		return err
	}

	if err := s.store.UpdateProfileStatus(profileID, domain.ProfileStatusVerified, time.Now().UTC()); err != nil {
		zap.L().Warn("profile verification update failed", zap.Error(err), zap.String("profile_id", profileID.String()))
	}

	zap.L().Info("account verified", zap.String("account_id", accountID.String()))
	return nil
}

// GetAccount resolves an account by its external number.
func (s *AccountService) GetAccount(ctx context.Context, accountNumber string) (*models.Account, error) {
	acct, err := s.store.GetAccountByNumber(accountNumber)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetAccountByID looks up an account by internal ID.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	acct, err := s.store.GetAccount(accountID)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetAccountsForUser returns all accounts owned by the given profile.
func (s *AccountService) GetAccountsForUser(ctx context.Context, profileID uuid.UUID) []models.Account {
	return s.store.GetAccountsForProfile(profileID)
}

// UpdateStatus applies an administrative status change (suspend, close,
// reactivate). The verification worker re-checks status before its
// transition, so suspending or closing a pending account also cancels the
// scheduled activation.
func (s *AccountService) UpdateStatus(ctx context.Context, accountID uuid.UUID, status string) (*models.Account, error) {
	if !domain.ValidAccountStatus(status) {
		return nil, fmt.Errorf("invalid account status %q", status)
	}

	var out models.Account
	err := s.store.WithAccount(accountID, func(h *ledger.Handle) error {
		acct := h.Account()
		acct.Status = status
		acct.UpdatedAt = time.Now().UTC()
		out = *acct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
