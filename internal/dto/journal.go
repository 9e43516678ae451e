package dto

import (
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit leg in a create request.
type JournalLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount" swaggertype:"string" example:"5000.00"`
	CreditAmount decimal.Decimal `json:"creditAmount" swaggertype:"string" example:"0"`
	Description  string          `json:"description" binding:"max=500"`
}

// CreateJournalEntryRequest defines the data needed to create and post a journal entry.
// Line count and balance are checked by the ledger service so each failure keeps its own error.
type CreateJournalEntryRequest struct {
	EntryDate   Date                    `json:"entryDate" binding:"required" swaggertype:"string" example:"2025-04-01"`
	EntryType   domain.JournalEntryType `json:"entryType" binding:"required,oneof=INVOICE PAYMENT ADVANCE_PAYMENT ADVANCE_ADJUSTMENT REFUND ADJUSTMENT OPENING_BALANCE TRANSFER"`
	Description string                  `json:"description" binding:"required,max=500"`
	Reference   *string                 `json:"reference" binding:"omitempty,max=100"`
	ReferenceID *string                 `json:"referenceID" binding:"omitempty,max=100"`
	Notes       *string                 `json:"notes" binding:"omitempty,max=2000"`
	Lines       []JournalLineRequest    `json:"lines" binding:"dive"`
}

// ReverseJournalEntryRequest carries the optional reason for a reversal.
type ReverseJournalEntryRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// JournalLineResponse defines the data returned for a journal entry line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	AccountCode  string          `json:"accountCode,omitempty"`
	AccountName  string          `json:"accountName,omitempty"`
	DebitAmount  decimal.Decimal `json:"debitAmount" swaggertype:"string"`
	CreditAmount decimal.Decimal `json:"creditAmount" swaggertype:"string"`
	Description  string          `json:"description"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	JournalEntryID    string                `json:"journalEntryID"`
	EntryNumber       string                `json:"entryNumber"`
	EntryDate         Date                  `json:"entryDate" swaggertype:"string"`
	EntryType         string                `json:"entryType"`
	Status            string                `json:"status"`
	Description       string                `json:"description"`
	Reference         *string               `json:"reference,omitempty"`
	ReferenceID       *string               `json:"referenceID,omitempty"`
	Notes             *string               `json:"notes,omitempty"`
	TotalDebit        decimal.Decimal       `json:"totalDebit" swaggertype:"string"`
	TotalCredit       decimal.Decimal       `json:"totalCredit" swaggertype:"string"`
	PostedByID        *string               `json:"postedByID,omitempty"`
	PostedAt          *time.Time            `json:"postedAt,omitempty"`
	ReversedByID      *string               `json:"reversedByID,omitempty"`
	ReversedAt        *time.Time            `json:"reversedAt,omitempty"`
	ReversedEntryID   *string               `json:"reversedEntryID,omitempty"`
	ReversalOfEntryID *string               `json:"reversalOfEntryID,omitempty"`
	Lines             []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
	CreatedBy         string                `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(j *domain.JournalEntry) JournalEntryResponse {
	res := JournalEntryResponse{
		JournalEntryID:    j.JournalEntryID,
		EntryNumber:       j.EntryNumber,
		EntryDate:         NewDate(j.EntryDate),
		EntryType:         string(j.EntryType),
		Status:            string(j.Status),
		Description:       j.Description,
		Reference:         j.Reference,
		ReferenceID:       j.ReferenceID,
		Notes:             j.Notes,
		TotalDebit:        j.TotalDebit,
		TotalCredit:       j.TotalCredit,
		PostedByID:        j.PostedByID,
		PostedAt:          j.PostedAt,
		ReversedByID:      j.ReversedByID,
		ReversedAt:        j.ReversedAt,
		ReversedEntryID:   j.ReversedEntryID,
		ReversalOfEntryID: j.ReversalOfEntryID,
		CreatedAt:         j.CreatedAt,
		CreatedBy:         j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		res.Lines = make([]JournalLineResponse, len(j.Lines))
		for i, l := range j.Lines {
			res.Lines[i] = JournalLineResponse{
				LineID:       l.LineID,
				AccountID:    l.AccountID,
				AccountCode:  l.AccountCode,
				AccountName:  l.AccountName,
				DebitAmount:  l.DebitAmount,
				CreditAmount: l.CreditAmount,
				Description:  l.Description,
			}
		}
	}
	return res
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	EntryType string `form:"type" binding:"omitempty,oneof=INVOICE PAYMENT ADVANCE_PAYMENT ADVANCE_ADJUSTMENT REFUND ADJUSTMENT OPENING_BALANCE TRANSFER"`
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	From      string `form:"from"`
	To        string `form:"to"`
	Limit     int    `form:"limit,default=50" binding:"min=1,max=200"`
	NextToken string `form:"nextToken"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListJournalEntriesParams) ToFilter() (domain.JournalEntryFilter, error) {
	filter := domain.JournalEntryFilter{Limit: p.Limit}
	if p.EntryType != "" {
		t := domain.JournalEntryType(p.EntryType)
		filter.EntryType = &t
	}
	if p.Status != "" {
		s := domain.JournalStatus(p.Status)
		filter.Status = &s
	}
	var err error
	if filter.From, err = ParseOptionalDate(p.From); err != nil {
		return filter, err
	}
	if filter.To, err = ParseOptionalDate(p.To); err != nil {
		return filter, err
	}
	if p.NextToken != "" {
		token := p.NextToken
		filter.NextToken = &token
	}
	return filter, nil
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToListJournalEntriesResponse converts a page of entries to its DTO.
func ToListJournalEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListJournalEntriesResponse {
	res := ListJournalEntriesResponse{
		Entries:   make([]JournalEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		res.Entries[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}
