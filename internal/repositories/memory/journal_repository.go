package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/SscSPs/school_fee_ledger/internal/utils/pagination"
)

func cloneLines(lines []domain.JournalEntryLine) []domain.JournalEntryLine {
	if lines == nil {
		return nil
	}
	out := make([]domain.JournalEntryLine, len(lines))
	copy(out, lines)
	return out
}

func (v *view) FindJournalEntryByID(_ context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	defer v.rlock()()

	e, ok := v.entry(entryID)
	if !ok || e.TenantID != tenantID {
		return nil, apperrors.ErrNotFound
	}
	e.Lines = nil
	return &e, nil
}

func (v *view) FindJournalEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	if err := v.store.lockKey(ctx, v.tx, "entry:"+entryID); err != nil {
		return nil, err
	}
	return v.FindJournalEntryByID(ctx, tenantID, entryID)
}

// FindLinesByEntryID returns lines in insertion order with account code and name filled in.
func (v *view) FindLinesByEntryID(_ context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	defer v.rlock()()

	lines := cloneLines(v.entryLines(entryID))
	for i := range lines {
		if acc, ok := v.account(lines[i].AccountID); ok {
			lines[i].AccountCode = acc.Code
			lines[i].AccountName = acc.Name
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].LineOrder < lines[j].LineOrder })
	return lines, nil
}

func (v *view) ListJournalEntries(_ context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error) {
	var (
		afterDate time.Time
		afterID   string
	)
	if filter.NextToken != nil {
		var err error
		afterDate, afterID, err = pagination.DecodeEntryToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}

	defer v.rlock()()

	matches := make([]domain.JournalEntry, 0)
	for _, e := range v.allEntries() {
		if e.TenantID != tenantID {
			continue
		}
		if filter.EntryType != nil && e.EntryType != *filter.EntryType {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		if filter.From != nil && e.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.EntryDate.After(*filter.To) {
			continue
		}
		if filter.NextToken != nil {
			// keyset: (entry_date, id) < (afterDate, afterID)
			if e.EntryDate.After(afterDate) || (e.EntryDate.Equal(afterDate) && e.JournalEntryID >= afterID) {
				continue
			}
		}
		e.Lines = nil
		matches = append(matches, e)
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].EntryDate.Equal(matches[j].EntryDate) {
			return matches[i].EntryDate.After(matches[j].EntryDate)
		}
		return matches[i].JournalEntryID > matches[j].JournalEntryID
	})

	limit := pagination.ClampLimit(filter.Limit)
	var next *string
	if len(matches) > limit {
		matches = matches[:limit]
		last := matches[limit-1]
		token := pagination.EncodeEntryToken(last.EntryDate, last.JournalEntryID)
		next = &token
	}
	return matches, next, nil
}

func (v *view) SaveJournalEntry(_ context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	if v.tx == nil {
		return fmt.Errorf("%w: journal entries are only written inside a transaction", apperrors.ErrInternal)
	}
	defer v.rlock()()

	for _, e := range v.allEntries() {
		if e.JournalEntryID == entry.JournalEntryID ||
			(e.TenantID == entry.TenantID && e.EntryNumber == entry.EntryNumber) {
			return fmt.Errorf("%w: journal entry %s", apperrors.ErrDuplicate, entry.EntryNumber)
		}
	}
	for _, l := range lines {
		acc, ok := v.account(l.AccountID)
		if !ok || acc.TenantID != entry.TenantID {
			return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, l.AccountID)
		}
	}

	entry.Lines = nil
	v.tx.entries[entry.JournalEntryID] = entry
	v.tx.lines[entry.JournalEntryID] = cloneLines(lines)
	return nil
}

func (v *view) updateEntry(tenantID, entryID string, from domain.JournalStatus, apply func(*domain.JournalEntry)) error {
	if v.tx == nil {
		return fmt.Errorf("%w: journal entries are only written inside a transaction", apperrors.ErrInternal)
	}
	defer v.rlock()()

	e, ok := v.entry(entryID)
	if !ok || e.TenantID != tenantID {
		return apperrors.ErrNotFound
	}
	if e.Status != from {
		return fmt.Errorf("%w: entry %s is %s", apperrors.ErrInvalidTransition, e.EntryNumber, e.Status)
	}
	apply(&e)
	v.tx.entries[entryID] = e
	return nil
}

func (v *view) MarkJournalEntryPosted(_ context.Context, tenantID, entryID, actorID string, at time.Time) error {
	return v.updateEntry(tenantID, entryID, domain.Draft, func(e *domain.JournalEntry) {
		e.Status = domain.Posted
		e.PostedByID = &actorID
		e.PostedAt = &at
		e.LastUpdatedAt = at
		e.LastUpdatedBy = actorID
	})
}

func (v *view) MarkJournalEntryReversed(_ context.Context, tenantID, entryID, reversalEntryID, actorID string, at time.Time) error {
	return v.updateEntry(tenantID, entryID, domain.Posted, func(e *domain.JournalEntry) {
		e.Status = domain.Reversed
		e.ReversedByID = &actorID
		e.ReversedAt = &at
		e.ReversedEntryID = &reversalEntryID
		e.LastUpdatedAt = at
		e.LastUpdatedBy = actorID
	})
}
