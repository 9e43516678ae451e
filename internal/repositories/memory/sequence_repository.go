package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

// NextJournalSequence locks the tenant's counter for the rest of the transaction,
// then increments it. A missing counter is seeded from existing entry numbers.
func (v *view) NextJournalSequence(ctx context.Context, tenantID string, year int, prefix string) (int64, error) {
	if err := v.store.lockKey(ctx, v.tx, fmt.Sprintf("sequence:%s", tenantID)); err != nil {
		return 0, err
	}

	defer v.rlock()()

	key := sequenceKey{tenantID: tenantID, year: year, prefix: prefix}
	current, ok := v.tx.sequences[key]
	if !ok {
		current, ok = v.store.sequences[key]
	}
	if !ok {
		for _, e := range v.allEntries() {
			if e.TenantID != tenantID {
				continue
			}
			if seq, match := domain.ParseEntrySequence(prefix, year, e.EntryNumber); match && seq > current {
				current = seq
			}
		}
	}

	next := current + 1
	v.tx.sequences[key] = next
	return next, nil
}
