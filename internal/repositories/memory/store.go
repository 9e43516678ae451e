// Package memory is an in-process implementation of the repository ports. It keeps
// the transactional and locking behaviour of the Postgres implementation so the
// ledger services can be exercised without a database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
)

type sequenceKey struct {
	tenantID string
	year     int
	prefix   string
}

// Store holds committed state.
type Store struct {
	mu sync.RWMutex

	accounts  map[string]domain.Account
	entries   map[string]domain.JournalEntry
	lines     map[string][]domain.JournalEntryLine // keyed by entry id
	sequences map[sequenceKey]int64

	// keyLocks hold *sync.Mutex values that stand in for row locks. They are
	// held until the owning transaction ends.
	keyLocks sync.Map
}

// New creates an empty store.
func New() *Store {
	return &Store{
		accounts:  make(map[string]domain.Account),
		entries:   make(map[string]domain.JournalEntry),
		lines:     make(map[string][]domain.JournalEntryLine),
		sequences: make(map[sequenceKey]int64),
	}
}

// Ensure Store implements the TransactionManager interface
var _ portsrepo.TransactionManager = (*Store)(nil)

// Repositories returns repositories that read and write committed state directly.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return provider(&view{store: s})
}

func provider(v *view) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  v,
		JournalRepo:  v,
		LedgerRepo:   v,
		SequenceRepo: v,
	}
}

// WithTransaction stages every write made through the provided repositories and
// applies them atomically when fn returns nil.
func (s *Store) WithTransaction(ctx context.Context, fn func(repos portsrepo.RepositoryProvider) error) error {
	tx := newTxState()
	defer tx.releaseLocks()

	if err := fn(provider(&view{store: s, tx: tx})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) lockKey(ctx context.Context, tx *txState, key string) error {
	if tx == nil {
		return fmt.Errorf("%w: lock %s requested outside a transaction", apperrors.ErrInternal, key)
	}
	if _, held := tx.locks[key]; held {
		return nil
	}
	m, _ := s.keyLocks.LoadOrStore(key, &sync.Mutex{})
	mu := m.(*sync.Mutex)

	if mu.TryLock() {
		tx.hold(key, mu)
		return nil
	}
	acquired := make(chan struct{})
	go func() {
		mu.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
		tx.hold(key, mu)
		return nil
	case <-ctx.Done():
		// Hand the lock back as soon as the waiter gets it.
		go func() {
			<-acquired
			mu.Unlock()
		}()
		return ctx.Err()
	}
}

func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, acc := range tx.accounts {
		if acc == nil {
			continue
		}
		for otherID, other := range s.accounts {
			if otherID != id && other.TenantID == acc.TenantID && other.Code == acc.Code {
				return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, acc.Code)
			}
		}
	}

	for id, acc := range tx.accounts {
		if acc == nil {
			delete(s.accounts, id)
			continue
		}
		s.accounts[id] = *acc
	}
	for id, entry := range tx.entries {
		s.entries[id] = entry
	}
	for id, lines := range tx.lines {
		s.lines[id] = lines
	}
	for key, value := range tx.sequences {
		s.sequences[key] = value
	}
	return nil
}

// txState is the write overlay and lock set of one transaction. It is only used
// by the goroutine running the transaction.
type txState struct {
	accounts  map[string]*domain.Account // nil value marks a delete
	entries   map[string]domain.JournalEntry
	lines     map[string][]domain.JournalEntryLine
	sequences map[sequenceKey]int64
	locks     map[string]*sync.Mutex
	lockOrder []string
}

func newTxState() *txState {
	return &txState{
		accounts:  make(map[string]*domain.Account),
		entries:   make(map[string]domain.JournalEntry),
		lines:     make(map[string][]domain.JournalEntryLine),
		sequences: make(map[sequenceKey]int64),
		locks:     make(map[string]*sync.Mutex),
	}
}

func (t *txState) hold(key string, mu *sync.Mutex) {
	t.locks[key] = mu
	t.lockOrder = append(t.lockOrder, key)
}

func (t *txState) releaseLocks() {
	for i := len(t.lockOrder) - 1; i >= 0; i-- {
		t.locks[t.lockOrder[i]].Unlock()
	}
	t.locks = nil
	t.lockOrder = nil
}

// view implements every repository port over committed state, optionally
// overlaid with a transaction's staged writes.
type view struct {
	store *Store
	tx    *txState
}

var (
	_ portsrepo.AccountRepositoryFacade = (*view)(nil)
	_ portsrepo.JournalRepositoryFacade = (*view)(nil)
	_ portsrepo.LedgerQueryRepository   = (*view)(nil)
	_ portsrepo.SequenceRepository      = (*view)(nil)
)

// account returns the visible version of an account. Callers hold store.mu.
func (v *view) account(id string) (domain.Account, bool) {
	if v.tx != nil {
		if acc, staged := v.tx.accounts[id]; staged {
			if acc == nil {
				return domain.Account{}, false
			}
			return *acc, true
		}
	}
	acc, ok := v.store.accounts[id]
	return acc, ok
}

// allAccounts returns every visible account. Callers hold store.mu.
func (v *view) allAccounts() []domain.Account {
	result := make([]domain.Account, 0, len(v.store.accounts))
	for id := range v.store.accounts {
		if acc, ok := v.account(id); ok {
			result = append(result, acc)
		}
	}
	if v.tx != nil {
		for id, acc := range v.tx.accounts {
			if _, committed := v.store.accounts[id]; !committed && acc != nil {
				result = append(result, *acc)
			}
		}
	}
	return result
}

// entry returns the visible version of an entry. Callers hold store.mu.
func (v *view) entry(id string) (domain.JournalEntry, bool) {
	if v.tx != nil {
		if e, ok := v.tx.entries[id]; ok {
			return e, true
		}
	}
	e, ok := v.store.entries[id]
	return e, ok
}

// allEntries returns every visible entry. Callers hold store.mu.
func (v *view) allEntries() []domain.JournalEntry {
	result := make([]domain.JournalEntry, 0, len(v.store.entries))
	for id, e := range v.store.entries {
		if v.tx != nil {
			if staged, ok := v.tx.entries[id]; ok {
				e = staged
			}
		}
		result = append(result, e)
	}
	if v.tx != nil {
		for id, e := range v.tx.entries {
			if _, committed := v.store.entries[id]; !committed {
				result = append(result, e)
			}
		}
	}
	return result
}

// entryLines returns the visible lines of an entry. Callers hold store.mu.
func (v *view) entryLines(entryID string) []domain.JournalEntryLine {
	if v.tx != nil {
		if lines, ok := v.tx.lines[entryID]; ok {
			return lines
		}
	}
	return v.store.lines[entryID]
}

func (v *view) rlock() func() {
	v.store.mu.RLock()
	return v.store.mu.RUnlock
}

// wlock is used by writes made outside a transaction.
func (v *view) wlock() func() {
	v.store.mu.Lock()
	return v.store.mu.Unlock
}
