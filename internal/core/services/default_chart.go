package services

import (
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type accountTemplate struct {
	Code        string
	Name        string
	Type        domain.AccountType
	Subtype     domain.AccountSubtype
	Description string
}

// defaultChart is the standard chart created for every new school.
var defaultChart = []accountTemplate{
	{"1000", "Cash", domain.Asset, domain.SubtypeCash, "Cash in hand"},
	{"1010", "Bank", domain.Asset, domain.SubtypeBank, "School bank account"},
	{"1100", "Fees Receivable", domain.Asset, domain.SubtypeReceivable, "Fees invoiced but not yet collected"},
	{"2100", "Advance Fees", domain.Liability, domain.SubtypeUnearnedRevenue, "Fees collected ahead of invoicing (unearned revenue)"},
	{"4000", "Tuition Fee Income", domain.Income, domain.SubtypeFeeIncome, ""},
	{"4100", "Transport Fee Income", domain.Income, domain.SubtypeFeeIncome, ""},
	{"4200", "Admission Fee Income", domain.Income, domain.SubtypeFeeIncome, ""},
	{"4300", "Examination Fee Income", domain.Income, domain.SubtypeFeeIncome, ""},
	{"4900", "Other Income", domain.Income, domain.SubtypeOtherIncome, ""},
}

func (t accountTemplate) build(tenantID, actor string, now time.Time) domain.Account {
	return domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        tenantID,
		Code:            t.Code,
		Name:            t.Name,
		AccountType:     t.Type,
		Subtype:         t.Subtype,
		Description:     t.Description,
		OpeningBalance:  decimal.Zero,
		IsActive:        true,
		IsSystemAccount: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
}
