// Package ledger holds the authoritative in-memory state: accounts, customer
// profiles, and per-account transaction histories.
package ledger

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wibank/ledger-core/internal/domain"
	"github.com/wibank/ledger-core/internal/models"
)

// Store is the authoritative mapping from ID to account, profile, and
// transaction history.
//
// Locking discipline: mu guards the maps and indexes. Every per-account
// mutation holds mu's read side plus the account's own mutex for the whole
// critical section, so operations against one account are serialized while
// different accounts proceed concurrently. Snapshot takes mu's write side,
// which excludes all in-flight mutators and yields a consistent view.
type Store struct {
	mu        sync.RWMutex
	accounts  map[uuid.UUID]*accountRecord
	profiles  map[uuid.UUID]*models.CustomerProfile
	byNumber  map[string]uuid.UUID
	byProfile map[uuid.UUID][]uuid.UUID
}

type accountRecord struct {
	mu      sync.Mutex
	account models.Account
	history []models.Transaction // most-recent-first

	// verifyDue is the time the pending verification job becomes runnable,
	// zero once consumed or never scheduled.
	verifyDue time.Time
	// settleDue maps pending transaction IDs to their clearing time.
	settleDue map[uuid.UUID]time.Time
}

func NewStore() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]*accountRecord),
		profiles:  make(map[uuid.UUID]*models.CustomerProfile),
		byNumber:  make(map[string]uuid.UUID),
		byProfile: make(map[uuid.UUID][]uuid.UUID),
	}
}

// CreateAccount persists a profile and its account atomically. The account
// number must already be set; ErrDuplicateAccountNumber is returned on
// collision and neither half is persisted.
func (s *Store) CreateAccount(profile *models.CustomerProfile, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byNumber[account.AccountNumber]; exists {
		return models.ErrDuplicateAccountNumber
	}

	// A returning customer opening a second account keeps their existing
	// profile.
	if _, exists := s.profiles[profile.ID]; !exists {
		p := *profile
		s.profiles[p.ID] = &p
	}
	s.accounts[account.ID] = &accountRecord{
		account:   *account,
		settleDue: make(map[uuid.UUID]time.Time),
	}
	s.byNumber[account.AccountNumber] = account.ID
	s.byProfile[account.ProfileID] = append(s.byProfile[account.ProfileID], account.ID)
	return nil
}

// NewAccountNumber generates a unique bank-format account number, retrying on
// the (unlikely) collision with an existing one.
func (s *Store) NewAccountNumber() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for {
		n := generateAccountNumber()
		if _, taken := s.byNumber[n]; !taken {
			return n
		}
	}
}

// Handle provides exclusive access to a single account while a critical
// section runs. It must not be retained past the callback.
type Handle struct {
	rec *accountRecord
}

// Account returns the live account record. Mutations through it are only
// visible once the critical section ends.
func (h *Handle) Account() *models.Account {
	return &h.rec.account
}

// Prepend inserts a transaction at the head of the history (most-recent-first).
func (h *Handle) Prepend(tx models.Transaction) {
	h.rec.history = append([]models.Transaction{tx}, h.rec.history...)
}

// History returns a copy of the most recent transactions, bounded by limit.
func (h *Handle) History(limit int) []models.Transaction {
	if limit <= 0 || limit > len(h.rec.history) {
		limit = len(h.rec.history)
	}
	out := make([]models.Transaction, limit)
	copy(out, h.rec.history[:limit])
	return out
}

// Settle transitions a pending transaction to completed. It reports whether
// the transaction existed and was pending.
func (h *Handle) Settle(txID uuid.UUID) (models.Transaction, bool) {
	for i := range h.rec.history {
		if h.rec.history[i].ID != txID {
			continue
		}
		if h.rec.history[i].Status != domain.TxStatusPending {
			return models.Transaction{}, false
		}
		h.rec.history[i].Status = domain.TxStatusCompleted
		return h.rec.history[i], true
	}
	return models.Transaction{}, false
}

// ScheduleSettlement records when a pending transaction becomes due for
// clearing. Caller must hold the handle.
func (h *Handle) ScheduleSettlement(txID uuid.UUID, due time.Time) {
	h.rec.settleDue[txID] = due
}

// WithAccount runs fn while holding exclusive access to the account.
func (s *Store) WithAccount(id uuid.UUID, fn func(h *Handle) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.accounts[id]
	if !ok {
		return models.ErrAccountNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return fn(&Handle{rec: rec})
}

// WithAccounts runs fn while holding exclusive access to both accounts.
// Locks are acquired in a canonical order (by account ID) regardless of
// argument order to prevent deadlocks.
func (s *Store) WithAccounts(aID, bID uuid.UUID, fn func(a, b *Handle) error) error {
	if aID == bID {
		return s.WithAccount(aID, func(h *Handle) error { return fn(h, h) })
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recA, ok := s.accounts[aID]
	if !ok {
		return models.ErrAccountNotFound
	}
	recB, ok := s.accounts[bID]
	if !ok {
		return models.ErrAccountNotFound
	}

	first, second := recA, recB
	if strings.Compare(aID.String(), bID.String()) > 0 {
		first, second = recB, recA
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	return fn(&Handle{rec: recA}, &Handle{rec: recB})
}

// GetAccount returns a copy of the account with the given internal ID.
func (s *Store) GetAccount(id uuid.UUID) (models.Account, error) {
	var out models.Account
	err := s.WithAccount(id, func(h *Handle) error {
		out = *h.Account()
		return nil
	})
	return out, err
}

// GetAccountByNumber resolves an external account number via the secondary
// index.
func (s *Store) GetAccountByNumber(number string) (models.Account, error) {
	s.mu.RLock()
	id, ok := s.byNumber[number]
	s.mu.RUnlock()
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return s.GetAccount(id)
}

// GetAccountsForProfile returns copies of all accounts owned by a profile.
func (s *Store) GetAccountsForProfile(profileID uuid.UUID) []models.Account {
	s.mu.RLock()
	ids := append([]uuid.UUID(nil), s.byProfile[profileID]...)
	s.mu.RUnlock()

	out := make([]models.Account, 0, len(ids))
	for _, id := range ids {
		if acct, err := s.GetAccount(id); err == nil {
			out = append(out, acct)
		}
	}
	return out
}

// GetProfile returns a copy of the customer profile.
func (s *Store) GetProfile(id uuid.UUID) (models.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.CustomerProfile{}, models.ErrProfileNotFound
	}
	return *p, nil
}

// UpdateProfileStatus sets a profile's verification status.
func (s *Store) UpdateProfileStatus(id uuid.UUID, status string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return models.ErrProfileNotFound
	}
	p.VerificationStatus = status
	p.UpdatedAt = now
	return nil
}

// TransactionHistory returns up to limit transactions, most-recent-first.
func (s *Store) TransactionHistory(accountID uuid.UUID, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	err := s.WithAccount(accountID, func(h *Handle) error {
		out = h.History(limit)
		return nil
	})
	return out, err
}

// ScheduleVerification marks the account as due for its verification
// transition at the given time.
func (s *Store) ScheduleVerification(accountID uuid.UUID, due time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.accounts[accountID]
	if !ok {
		return models.ErrAccountNotFound
	}
	rec.verifyDue = due
	return nil
}

// DueVerifications pops the accounts whose verification delay has elapsed.
// Each account is returned at most once.
func (s *Store) DueVerifications(now time.Time) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []uuid.UUID
	for id, rec := range s.accounts {
		if !rec.verifyDue.IsZero() && !rec.verifyDue.After(now) {
			rec.verifyDue = time.Time{}
			due = append(due, id)
		}
	}
	return due
}

// SettlementRef identifies one pending transaction awaiting clearing.
type SettlementRef struct {
	AccountID     uuid.UUID
	TransactionID uuid.UUID
}

// DueSettlements pops the pending transactions whose clearing time has
// elapsed.
func (s *Store) DueSettlements(now time.Time) []SettlementRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []SettlementRef
	for accountID, rec := range s.accounts {
		for txID, at := range rec.settleDue {
			if !at.After(now) {
				delete(rec.settleDue, txID)
				due = append(due, SettlementRef{AccountID: accountID, TransactionID: txID})
			}
		}
	}
	return due
}

// Snapshot returns a consistent copy of every account, sorted by creation
// time. Taking the write lock excludes all in-flight mutators, so no torn
// balances are observable.
func (s *Store) Snapshot() []models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Account, 0, len(s.accounts))
	for _, rec := range s.accounts {
		out = append(out, rec.account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// SnapshotProfiles returns a copy of every customer profile.
func (s *Store) SnapshotProfiles() []models.CustomerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CustomerProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
