package mapping

import (
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/SscSPs/school_fee_ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry. Lines are mapped separately.
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalEntryID:    d.JournalEntryID,
		TenantID:          d.TenantID,
		EntryNumber:       d.EntryNumber,
		EntryDate:         d.EntryDate,
		EntryType:         string(d.EntryType),
		Status:            string(d.Status),
		Description:       d.Description,
		Reference:         d.Reference,
		ReferenceID:       d.ReferenceID,
		Notes:             d.Notes,
		TotalDebit:        d.TotalDebit,
		TotalCredit:       d.TotalCredit,
		PostedBy:          d.PostedByID,
		PostedAt:          d.PostedAt,
		ReversedBy:        d.ReversedByID,
		ReversedAt:        d.ReversedAt,
		ReversedEntryID:   d.ReversedEntryID,
		ReversalOfEntryID: d.ReversalOfEntryID,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID:    m.JournalEntryID,
		TenantID:          m.TenantID,
		EntryNumber:       m.EntryNumber,
		EntryDate:         m.EntryDate,
		EntryType:         domain.JournalEntryType(m.EntryType),
		Status:            domain.JournalStatus(m.Status),
		Description:       m.Description,
		Reference:         m.Reference,
		ReferenceID:       m.ReferenceID,
		Notes:             m.Notes,
		TotalDebit:        m.TotalDebit,
		TotalCredit:       m.TotalCredit,
		PostedByID:        m.PostedBy,
		PostedAt:          m.PostedAt,
		ReversedByID:      m.ReversedBy,
		ReversedAt:        m.ReversedAt,
		ReversedEntryID:   m.ReversedEntryID,
		ReversalOfEntryID: m.ReversalOfEntryID,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:         d.LineID,
		JournalEntryID: d.JournalEntryID,
		AccountID:      d.AccountID,
		DebitAmount:    d.DebitAmount,
		CreditAmount:   d.CreditAmount,
		Description:    nullableString(d.Description),
		LineOrder:      d.LineOrder,
		AccountCode:    d.AccountCode,
		AccountName:    d.AccountName,
	}
}

// ToDomainJournalEntryLine converts a model JournalEntryLine to a domain JournalEntryLine
func ToDomainJournalEntryLine(m models.JournalEntryLine) domain.JournalEntryLine {
	return domain.JournalEntryLine{
		LineID:         m.LineID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		DebitAmount:    m.DebitAmount,
		CreditAmount:   m.CreditAmount,
		Description:    derefString(m.Description),
		LineOrder:      m.LineOrder,
		AccountCode:    m.AccountCode,
		AccountName:    m.AccountName,
	}
}

// ToDomainJournalEntryLineSlice converts a slice of model lines to domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntryLine(m)
	}
	return ds
}
