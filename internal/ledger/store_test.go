package ledger

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/models"
)

func newTestAccount(s *Store, t *testing.T) models.Account {
	t.Helper()
	now := time.Now().UTC()
	profile := &models.CustomerProfile{
		ID:                 uuid.New(),
		FirstName:          "Jane",
		LastName:           "Doe",
		VerificationStatus: domain.ProfileStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	account := &models.Account{
		ID:            uuid.New(),
		ProfileID:     profile.ID,
		AccountNumber: s.NewAccountNumber(),
		Kind:          domain.AccountKindChecking,
		Status:        domain.AccountStatusPendingVerification,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreateAccount(profile, account))
	return *account
}

func TestStore_CreateAccountAtomic(t *testing.T) {
	s := NewStore()
	acct := newTestAccount(s, t)

	got, err := s.GetAccount(acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.AccountNumber, got.AccountNumber)

	_, err = s.GetProfile(acct.ProfileID)
	require.NoError(t, err)

	// Duplicate account number must persist neither half.
	dupProfile := &models.CustomerProfile{ID: uuid.New()}
	dup := &models.Account{ID: uuid.New(), ProfileID: dupProfile.ID, AccountNumber: acct.AccountNumber}
	err = s.CreateAccount(dupProfile, dup)
	require.ErrorIs(t, err, models.ErrDuplicateAccountNumber)

	_, err = s.GetAccount(dup.ID)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
	_, err = s.GetProfile(dupProfile.ID)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestStore_NewAccountNumberFormat(t *testing.T) {
	s := NewStore()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		n := s.NewAccountNumber()
		require.True(t, strings.HasPrefix(n, domain.AccountNumberPrefix))
		require.Len(t, n, len(domain.AccountNumberPrefix)+8)
		seen[n] = struct{}{}
	}
	// 100 draws from a 10^8 space colliding would be extraordinary.
	assert.Greater(t, len(seen), 95)
}

func TestStore_GetAccountByNumber(t *testing.T) {
	s := NewStore()
	acct := newTestAccount(s, t)

	got, err := s.GetAccountByNumber(acct.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = s.GetAccountByNumber("WIB00000000")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestStore_GetAccountsForProfile(t *testing.T) {
	s := NewStore()
	now := time.Now().UTC()
	profile := &models.CustomerProfile{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}

	first := &models.Account{ID: uuid.New(), ProfileID: profile.ID, AccountNumber: s.NewAccountNumber()}
	require.NoError(t, s.CreateAccount(profile, first))
	second := &models.Account{ID: uuid.New(), ProfileID: profile.ID, AccountNumber: s.NewAccountNumber()}
	require.NoError(t, s.CreateAccount(profile, second))

	accounts := s.GetAccountsForProfile(profile.ID)
	assert.Len(t, accounts, 2)

	assert.Empty(t, s.GetAccountsForProfile(uuid.New()))
}

func TestStore_WithAccountsLockOrdering(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)
	b := newTestAccount(s, t)

	// Hammer both argument orders concurrently; a deadlock here hangs the test.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.WithAccounts(a.ID, b.ID, func(ha, hb *Handle) error {
				ha.Account().Balance++
				hb.Account().Balance--
				return nil
			})
		}()
		go func() {
			defer wg.Done()
			_ = s.WithAccounts(b.ID, a.ID, func(hb, ha *Handle) error {
				hb.Account().Balance++
				ha.Account().Balance--
				return nil
			})
		}()
	}
	wg.Wait()

	accA, err := s.GetAccount(a.ID)
	require.NoError(t, err)
	accB, err := s.GetAccount(b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), accA.Balance+accB.Balance)
}

func TestStore_WithAccountsSameAccount(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)

	err := s.WithAccounts(a.ID, a.ID, func(ha, hb *Handle) error {
		assert.Same(t, ha.Account(), hb.Account())
		return nil
	})
	require.NoError(t, err)
}

func TestStore_HistoryOrderAndLimit(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)

	for i := 1; i <= 5; i++ {
		amount := int64(i)
		require.NoError(t, s.WithAccount(a.ID, func(h *Handle) error {
			h.Prepend(models.Transaction{
				ID:        uuid.New(),
				AccountID: a.ID,
				Kind:      domain.TxKindCredit,
				Amount:    amount,
				Status:    domain.TxStatusCompleted,
			})
			return nil
		}))
	}

	history, err := s.TransactionHistory(a.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, int64(5), history[0].Amount)
	assert.Equal(t, int64(4), history[1].Amount)
	assert.Equal(t, int64(3), history[2].Amount)

	all, err := s.TransactionHistory(a.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestStore_SettleOnlyPending(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)
	txID := uuid.New()

	require.NoError(t, s.WithAccount(a.ID, func(h *Handle) error {
		h.Prepend(models.Transaction{ID: txID, AccountID: a.ID, Status: domain.TxStatusPending})
		return nil
	}))

	err := s.WithAccount(a.ID, func(h *Handle) error {
		settled, ok := h.Settle(txID)
		require.True(t, ok)
		assert.Equal(t, domain.TxStatusCompleted, settled.Status)

		// A second settle is a no-op.
		_, ok = h.Settle(txID)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_DueVerificationsPopsOnce(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)

	now := time.Now().UTC()
	require.NoError(t, s.ScheduleVerification(a.ID, now.Add(time.Minute)))
	assert.Empty(t, s.DueVerifications(now))

	due := s.DueVerifications(now.Add(2 * time.Minute))
	require.Len(t, due, 1)
	assert.Equal(t, a.ID, due[0])

	assert.Empty(t, s.DueVerifications(now.Add(3*time.Minute)))
}

func TestStore_DueSettlements(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)
	txID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, s.WithAccount(a.ID, func(h *Handle) error {
		h.ScheduleSettlement(txID, now.Add(time.Hour))
		return nil
	}))

	assert.Empty(t, s.DueSettlements(now))
	due := s.DueSettlements(now.Add(2 * time.Hour))
	require.Len(t, due, 1)
	assert.Equal(t, SettlementRef{AccountID: a.ID, TransactionID: txID}, due[0])
	assert.Empty(t, s.DueSettlements(now.Add(3*time.Hour)))
}

func TestStore_SnapshotConsistency(t *testing.T) {
	s := NewStore()
	a := newTestAccount(s, t)
	b := newTestAccount(s, t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			// Move 1 micro back and forth; the sum is invariant.
			_ = s.WithAccounts(a.ID, b.ID, func(ha, hb *Handle) error {
				ha.Account().Balance--
				hb.Account().Balance++
				return nil
			})
		}
	}()

	for i := 0; i < 100; i++ {
		var total int64
		for _, acct := range s.Snapshot() {
			total += acct.Balance
		}
		assert.Equal(t, int64(0), total)
	}
	close(stop)
	wg.Wait()
}
