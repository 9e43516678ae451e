package models

import (
	"github.com/shopspring/decimal"
)

// Account is the row shape of the accounts table.
// Nullable columns are pointers.
type Account struct {
	AccountID       string          `db:"account_id"`
	TenantID        string          `db:"tenant_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	Subtype         *string         `db:"subtype"`
	Description     *string         `db:"description"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	IsActive        bool            `db:"is_active"`
	IsSystemAccount bool            `db:"is_system_account"`
	ParentAccountID *string         `db:"parent_account_id"`
	AuditFields
}
