package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

func cloneAccount(acc domain.Account) *domain.Account {
	if acc.ParentAccountID != nil {
		parent := *acc.ParentAccountID
		acc.ParentAccountID = &parent
	}
	return &acc
}

// codeTaken reports whether another visible account of the tenant uses code. Callers hold store.mu.
func (v *view) codeTaken(tenantID, code, exceptID string) bool {
	for _, acc := range v.allAccounts() {
		if acc.TenantID == tenantID && acc.Code == code && acc.AccountID != exceptID {
			return true
		}
	}
	return false
}

func (v *view) FindAccountByID(_ context.Context, tenantID, accountID string) (*domain.Account, error) {
	defer v.rlock()()

	acc, ok := v.account(accountID)
	if !ok || acc.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	return cloneAccount(acc), nil
}

func (v *view) FindAccountByCode(_ context.Context, tenantID, code string) (*domain.Account, error) {
	defer v.rlock()()

	for _, acc := range v.allAccounts() {
		if acc.TenantID == tenantID && acc.Code == code {
			return cloneAccount(acc), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (v *view) FindAccountsByIDs(_ context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	defer v.rlock()()

	result := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := v.account(id); ok && acc.TenantID == tenantID {
			result[id] = *cloneAccount(acc)
		}
	}
	return result, nil
}

func (v *view) ListAccounts(_ context.Context, tenantID string, filter domain.AccountFilter) ([]domain.Account, error) {
	defer v.rlock()()

	result := make([]domain.Account, 0)
	for _, acc := range v.allAccounts() {
		if acc.TenantID != tenantID {
			continue
		}
		if filter.AccountType != nil && acc.AccountType != *filter.AccountType {
			continue
		}
		if filter.ActiveOnly && !acc.IsActive {
			continue
		}
		result = append(result, *cloneAccount(acc))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (v *view) AccountHasLines(_ context.Context, tenantID, accountID string) (bool, error) {
	defer v.rlock()()
	return v.accountReferenced(accountID), nil
}

// accountReferenced reports whether any visible line points at the account. Callers hold store.mu.
func (v *view) accountReferenced(accountID string) bool {
	for _, e := range v.allEntries() {
		for _, l := range v.entryLines(e.JournalEntryID) {
			if l.AccountID == accountID {
				return true
			}
		}
	}
	return false
}

func (v *view) SaveAccount(_ context.Context, account domain.Account) error {
	if v.tx != nil {
		defer v.rlock()()
		if _, exists := v.account(account.AccountID); exists || v.codeTaken(account.TenantID, account.Code, account.AccountID) {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
		v.tx.accounts[account.AccountID] = cloneAccount(account)
		return nil
	}

	defer v.wlock()()
	if _, exists := v.store.accounts[account.AccountID]; exists || v.codeTaken(account.TenantID, account.Code, account.AccountID) {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	v.store.accounts[account.AccountID] = *cloneAccount(account)
	return nil
}

func (v *view) UpdateAccount(_ context.Context, account domain.Account) error {
	if v.tx != nil {
		defer v.rlock()()
		existing, ok := v.account(account.AccountID)
		if !ok || existing.TenantID != account.TenantID {
			return apperrors.ErrNotFound
		}
		if v.codeTaken(account.TenantID, account.Code, account.AccountID) {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
		v.tx.accounts[account.AccountID] = cloneAccount(account)
		return nil
	}

	defer v.wlock()()
	existing, ok := v.store.accounts[account.AccountID]
	if !ok || existing.TenantID != account.TenantID {
		return apperrors.ErrNotFound
	}
	if v.codeTaken(account.TenantID, account.Code, account.AccountID) {
		return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
	}
	v.store.accounts[account.AccountID] = *cloneAccount(account)
	return nil
}

func (v *view) DeleteAccount(_ context.Context, tenantID, accountID string) error {
	if v.tx != nil {
		defer v.rlock()()
		existing, ok := v.account(accountID)
		if !ok || existing.TenantID != tenantID {
			return apperrors.ErrNotFound
		}
		if v.accountReferenced(accountID) {
			return fmt.Errorf("%w: account %s is referenced by journal lines", apperrors.ErrConflict, existing.Code)
		}
		v.tx.accounts[accountID] = nil
		return nil
	}

	defer v.wlock()()
	existing, ok := v.store.accounts[accountID]
	if !ok || existing.TenantID != tenantID {
		return apperrors.ErrNotFound
	}
	if v.accountReferenced(accountID) {
		return fmt.Errorf("%w: account %s is referenced by journal lines", apperrors.ErrConflict, existing.Code)
	}
	delete(v.store.accounts, accountID)
	return nil
}
