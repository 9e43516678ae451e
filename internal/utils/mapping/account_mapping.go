package mapping

import (
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/SscSPs/school_fee_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		TenantID:        d.TenantID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     string(d.AccountType),
		Subtype:         nullableString(string(d.Subtype)),
		Description:     nullableString(d.Description),
		OpeningBalance:  d.OpeningBalance,
		IsActive:        d.IsActive,
		IsSystemAccount: d.IsSystemAccount,
		ParentAccountID: d.ParentAccountID,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		TenantID:        m.TenantID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		Subtype:         domain.AccountSubtype(derefString(m.Subtype)),
		Description:     derefString(m.Description),
		OpeningBalance:  m.OpeningBalance,
		IsActive:        m.IsActive,
		IsSystemAccount: m.IsSystemAccount,
		ParentAccountID: m.ParentAccountID,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
