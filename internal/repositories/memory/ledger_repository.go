package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// countsInBooks reports whether an entry's lines contribute to balances.
func countsInBooks(e domain.JournalEntry) bool {
	return e.Status == domain.Posted || e.Status == domain.Reversed
}

func inWindow(date time.Time, from, to *time.Time) bool {
	if from != nil && date.Before(*from) {
		return false
	}
	if to != nil && date.After(*to) {
		return false
	}
	return true
}

// postedEntries returns the tenant's entries that count in the books within the window.
// Callers hold store.mu.
func (v *view) postedEntries(tenantID string, from, to *time.Time) []domain.JournalEntry {
	result := make([]domain.JournalEntry, 0)
	for _, e := range v.allEntries() {
		if e.TenantID == tenantID && countsInBooks(e) && inWindow(e.EntryDate, from, to) {
			result = append(result, e)
		}
	}
	return result
}

func (v *view) SumPostedByAccount(_ context.Context, tenantID, accountID string, from, to *time.Time) (domain.AccountMovement, error) {
	defer v.rlock()()

	mv := domain.AccountMovement{AccountID: accountID, Debit: decimal.Zero, Credit: decimal.Zero}
	for _, e := range v.postedEntries(tenantID, from, to) {
		for _, l := range v.entryLines(e.JournalEntryID) {
			if l.AccountID == accountID {
				mv.Debit = mv.Debit.Add(l.DebitAmount)
				mv.Credit = mv.Credit.Add(l.CreditAmount)
			}
		}
	}
	return mv, nil
}

func (v *view) SumPostedByTenant(_ context.Context, tenantID string, from, to *time.Time) (map[string]domain.AccountMovement, error) {
	defer v.rlock()()

	result := make(map[string]domain.AccountMovement)
	for _, e := range v.postedEntries(tenantID, from, to) {
		for _, l := range v.entryLines(e.JournalEntryID) {
			mv, ok := result[l.AccountID]
			if !ok {
				mv = domain.AccountMovement{AccountID: l.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
			}
			mv.Debit = mv.Debit.Add(l.DebitAmount)
			mv.Credit = mv.Credit.Add(l.CreditAmount)
			result[l.AccountID] = mv
		}
	}
	return result, nil
}

func (v *view) ListPostedLinesByAccount(_ context.Context, tenantID, accountID string, from, to *time.Time) ([]domain.LedgerLine, error) {
	defer v.rlock()()

	result := make([]domain.LedgerLine, 0)
	for _, e := range v.postedEntries(tenantID, from, to) {
		for _, l := range v.entryLines(e.JournalEntryID) {
			if l.AccountID != accountID {
				continue
			}
			result = append(result, domain.LedgerLine{
				JournalEntryLine: l,
				EntryNumber:      e.EntryNumber,
				EntryDate:        e.EntryDate,
				EntryType:        e.EntryType,
				EntryDesc:        e.Description,
			})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.JournalEntryID != b.JournalEntryID {
			return a.JournalEntryID < b.JournalEntryID
		}
		return a.LineOrder < b.LineOrder
	})
	return result, nil
}
