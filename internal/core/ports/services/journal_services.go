package services

import (
	"context"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/SscSPs/school_fee_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries, newest first, plus the next page token.
	ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// CreateJournalEntry validates, numbers, persists and posts an entry in one transaction.
	CreateJournalEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, actorID string) (*domain.JournalEntry, error)

	// PostJournalEntry posts a draft entry.
	PostJournalEntry(ctx context.Context, tenantID string, entryID string, actorID string) (*domain.JournalEntry, error)

	// ReverseJournalEntry creates the mirror entry of a posted entry and marks the original reversed.
	ReverseJournalEntry(ctx context.Context, tenantID string, entryID string, actorID string, reason *string) (*domain.JournalEntry, error)
}

// LedgerSvcFacade combines all journal-related service interfaces
type LedgerSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// BalanceSvc computes account positions from posted lines.
type BalanceSvc interface {
	// GetAccountBalance returns posted debit and credit totals and the signed balance up to asOf.
	GetAccountBalance(ctx context.Context, tenantID string, accountID string, asOf *time.Time) (*domain.AccountBalance, error)

	// GetAccountLedger returns an account's posted lines in date order with a running balance.
	GetAccountLedger(ctx context.Context, tenantID string, accountID string, from, to *time.Time) ([]domain.LedgerLine, error)
}
