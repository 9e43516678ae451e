package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
)

// SequenceAllocator turns per tenant-year counters into entry numbers.
// It must be called with a SequenceRepository bound to the transaction that will
// store the entry: the counter lock is held until that transaction ends, so
// concurrent creators for one tenant are serialised and other tenants are not.
type SequenceAllocator struct {
	prefix string
}

// NewSequenceAllocator creates an allocator for the given prefix (DefaultEntryNumberPrefix when empty).
func NewSequenceAllocator(prefix string) *SequenceAllocator {
	if prefix == "" {
		prefix = domain.DefaultEntryNumberPrefix
	}
	return &SequenceAllocator{prefix: prefix}
}

// Prefix returns the configured entry number prefix.
func (a *SequenceAllocator) Prefix() string {
	return a.prefix
}

// Next allocates the next entry number for tenantID in the year of at.
func (a *SequenceAllocator) Next(ctx context.Context, repo portsrepo.SequenceRepository, tenantID string, at time.Time) (string, error) {
	year := at.Year()
	seq, err := repo.NextJournalSequence(ctx, tenantID, year, a.prefix)
	if err != nil {
		return "", fmt.Errorf("allocating entry number for %d: %w", year, err)
	}
	return domain.FormatEntryNumber(a.prefix, year, seq), nil
}
