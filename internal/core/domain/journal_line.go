package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryLine is one debit or credit leg of a journal entry.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	Description    string          `json:"description"`
	LineOrder      int             `json:"lineOrder"`
	// Populated on reads for display.
	AccountCode string `json:"accountCode,omitempty"`
	AccountName string `json:"accountName,omitempty"`
}

// HasSingleSide reports whether exactly one of the two amounts is strictly positive
// and the other is exactly zero.
func (l JournalEntryLine) HasSingleSide() bool {
	debitPositive := l.DebitAmount.IsPositive()
	creditPositive := l.CreditAmount.IsPositive()
	switch {
	case debitPositive && l.CreditAmount.IsZero():
		return true
	case creditPositive && l.DebitAmount.IsZero():
		return true
	default:
		return false
	}
}

// Swapped returns a copy of the line with debit and credit exchanged.
func (l JournalEntryLine) Swapped() JournalEntryLine {
	l.DebitAmount, l.CreditAmount = l.CreditAmount, l.DebitAmount
	return l
}

// LedgerLine is a posted line joined with its parent entry and account, as shown
// in an account's ledger.
type LedgerLine struct {
	JournalEntryLine
	EntryNumber    string           `json:"entryNumber"`
	EntryDate      time.Time        `json:"entryDate"`
	EntryType      JournalEntryType `json:"entryType"`
	EntryDesc      string           `json:"entryDescription"`
	RunningBalance decimal.Decimal  `json:"runningBalance"`
}

// AccountBalance is the aggregated position of one account.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Balance   decimal.Decimal `json:"balance"`
}

// AccountMovement is the sum of posted debits and credits on one account.
type AccountMovement struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}
