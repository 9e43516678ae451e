package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntryType records what kind of business event produced an entry.
type JournalEntryType string

const (
	EntryInvoice           JournalEntryType = "INVOICE"
	EntryPayment           JournalEntryType = "PAYMENT"
	EntryAdvancePayment    JournalEntryType = "ADVANCE_PAYMENT"
	EntryAdvanceAdjustment JournalEntryType = "ADVANCE_ADJUSTMENT"
	EntryRefund            JournalEntryType = "REFUND"
	EntryAdjustment        JournalEntryType = "ADJUSTMENT"
	EntryOpeningBalance    JournalEntryType = "OPENING_BALANCE"
	EntryTransfer          JournalEntryType = "TRANSFER"
)

// IsValid reports whether t is a known entry type.
func (t JournalEntryType) IsValid() bool {
	switch t {
	case EntryInvoice, EntryPayment, EntryAdvancePayment, EntryAdvanceAdjustment,
		EntryRefund, EntryAdjustment, EntryOpeningBalance, EntryTransfer:
		return true
	default:
		return false
	}
}

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// CanTransitionTo reports whether moving from s to next is legal.
// Only DRAFT->POSTED and POSTED->REVERSED are allowed.
func (s JournalStatus) CanTransitionTo(next JournalStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Reversed
	case Reversed:
		return false
	default:
		return false
	}
}

// JournalEntry represents one balanced accounting transaction.
type JournalEntry struct {
	JournalEntryID    string             `json:"journalEntryID"`
	TenantID          string             `json:"tenantID"`
	EntryNumber       string             `json:"entryNumber"` // <PREFIX>-<YEAR>-<SEQ>
	EntryDate         time.Time          `json:"entryDate"`
	EntryType         JournalEntryType   `json:"entryType"`
	Status            JournalStatus      `json:"status"`
	Description       string             `json:"description"`
	Reference         *string            `json:"reference"`
	ReferenceID       *string            `json:"referenceID"`
	Notes             *string            `json:"notes"`
	TotalDebit        decimal.Decimal    `json:"totalDebit"`
	TotalCredit       decimal.Decimal    `json:"totalCredit"`
	PostedByID        *string            `json:"postedByID"`
	PostedAt          *time.Time         `json:"postedAt"`
	ReversedByID      *string            `json:"reversedByID"`
	ReversedAt        *time.Time         `json:"reversedAt"`
	ReversedEntryID   *string            `json:"reversedEntryID"`   // set on the original once reversed
	ReversalOfEntryID *string            `json:"reversalOfEntryID"` // set on the mirror entry
	Lines             []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// IsReversal reports whether the entry was created to reverse another entry.
func (j JournalEntry) IsReversal() bool {
	return j.ReversalOfEntryID != nil
}

// JournalEvent is emitted after a journal entry mutation has been committed.
type JournalEvent struct {
	EventType      string          `json:"eventType"`
	TenantID       string          `json:"tenantID"`
	JournalEntryID string          `json:"journalEntryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryType      string          `json:"entryType"`
	Status         JournalStatus   `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	RelatedEntryID *string         `json:"relatedEntryID,omitempty"`
	ActorID        string          `json:"actorID"`
	OccurredAt     time.Time       `json:"occurredAt"`
}

// Journal event types.
const (
	EventJournalPosted   = "journal.posted"
	EventJournalReversed = "journal.reversed"
)

// JournalEntryFilter narrows a journal entry listing. Nil fields are ignored.
// From and To are inclusive entry dates.
type JournalEntryFilter struct {
	EntryType *JournalEntryType
	Status    *JournalStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}
