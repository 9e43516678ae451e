package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the row shape of the journal_entries table.
type JournalEntry struct {
	JournalEntryID    string          `db:"journal_entry_id"`
	TenantID          string          `db:"tenant_id"`
	EntryNumber       string          `db:"entry_number"`
	EntryDate         time.Time       `db:"entry_date"`
	EntryType         string          `db:"entry_type"`
	Status            string          `db:"status"`
	Description       string          `db:"description"`
	Reference         *string         `db:"reference"`
	ReferenceID       *string         `db:"reference_id"`
	Notes             *string         `db:"notes"`
	TotalDebit        decimal.Decimal `db:"total_debit"`
	TotalCredit       decimal.Decimal `db:"total_credit"`
	PostedBy          *string         `db:"posted_by"`
	PostedAt          *time.Time      `db:"posted_at"`
	ReversedBy        *string         `db:"reversed_by"`
	ReversedAt        *time.Time      `db:"reversed_at"`
	ReversedEntryID   *string         `db:"reversed_entry_id"`
	ReversalOfEntryID *string         `db:"reversal_of_entry_id"`
	AuditFields
}

// JournalEntryLine is the row shape of the journal_entry_lines table.
// AccountCode and AccountName come from a join and are not stored.
type JournalEntryLine struct {
	LineID         string          `db:"line_id"`
	JournalEntryID string          `db:"journal_entry_id"`
	AccountID      string          `db:"account_id"`
	DebitAmount    decimal.Decimal `db:"debit_amount"`
	CreditAmount   decimal.Decimal `db:"credit_amount"`
	Description    *string         `db:"description"`
	LineOrder      int             `db:"line_order"`
	AccountCode    string          `db:"-"`
	AccountName    string          `db:"-"`
}
