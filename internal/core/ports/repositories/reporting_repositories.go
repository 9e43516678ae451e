package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

// LedgerQueryRepository aggregates posted journal lines. Only entries whose status
// is POSTED or REVERSED count: a reversed entry stays in the books and is
// cancelled by its mirror entry. Date bounds are inclusive and nil means open.
type LedgerQueryRepository interface {
	// SumPostedByAccount totals one account's posted debits and credits.
	SumPostedByAccount(ctx context.Context, tenantID, accountID string, from, to *time.Time) (domain.AccountMovement, error)

	// SumPostedByTenant totals posted debits and credits for every account of a tenant
	// that has activity in the window, keyed by account id.
	SumPostedByTenant(ctx context.Context, tenantID string, from, to *time.Time) (map[string]domain.AccountMovement, error)

	// ListPostedLinesByAccount lists an account's posted lines ordered by entry date, then entry id.
	ListPostedLinesByAccount(ctx context.Context, tenantID, accountID string, from, to *time.Time) ([]domain.LedgerLine, error)
}

// SequenceRepository hands out journal entry sequence numbers.
type SequenceRepository interface {
	// NextJournalSequence increments and returns the counter for (tenantID, year),
	// holding a lock on it until the enclosing transaction ends. The first call for a
	// key seeds the counter from the highest existing "<prefix>-<year>-NNNN" number.
	NextJournalSequence(ctx context.Context, tenantID string, year int, prefix string) (int64, error)
}
