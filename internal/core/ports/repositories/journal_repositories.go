package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry (without lines) scoped to a tenant.
	FindJournalEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// FindJournalEntryForUpdate retrieves an entry and locks it until the enclosing
	// transaction ends. Only meaningful inside TransactionManager.WithTransaction.
	FindJournalEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines in insertion order with account code/name populated.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// ListJournalEntries lists a tenant's entries newest first (entry date desc, id desc).
	// It returns the entries, a token for the next page, and an error.
	ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournalEntry persists an entry and its lines.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// MarkJournalEntryPosted moves an entry to POSTED and records who posted it.
	MarkJournalEntryPosted(ctx context.Context, tenantID, entryID, actorID string, at time.Time) error

	// MarkJournalEntryReversed moves an entry to REVERSED and links the mirror entry.
	MarkJournalEntryReversed(ctx context.Context, tenantID, entryID, reversalEntryID, actorID string, at time.Time) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
