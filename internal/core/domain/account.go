package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Income, Expense}

// NormalSide reports which side increases an account of this type.
func (t AccountType) NormalSide() (EntrySide, error) {
	switch t {
	case Asset, Expense:
		return DebitSide, nil
	case Liability, Equity, Income:
		return CreditSide, nil
	default:
		return "", fmt.Errorf("unknown account type %q", t)
	}
}

// IsValid reports whether t is one of the known account types.
func (t AccountType) IsValid() bool {
	_, err := t.NormalSide()
	return err == nil
}

// EntrySide is either the debit or the credit side of a line.
type EntrySide string

const (
	DebitSide  EntrySide = "DEBIT"
	CreditSide EntrySide = "CREDIT"
)

// AccountSubtype is a finer category within an account type.
type AccountSubtype string

const (
	SubtypeNone             AccountSubtype = ""
	SubtypeCash             AccountSubtype = "CASH"
	SubtypeBank             AccountSubtype = "BANK"
	SubtypeReceivable       AccountSubtype = "RECEIVABLE"
	SubtypeCurrentAsset     AccountSubtype = "CURRENT_ASSET"
	SubtypeFixedAsset       AccountSubtype = "FIXED_ASSET"
	SubtypePayable          AccountSubtype = "PAYABLE"
	SubtypeUnearnedRevenue  AccountSubtype = "UNEARNED_REVENUE"
	SubtypeCurrentLiability AccountSubtype = "CURRENT_LIABILITY"
	SubtypeCapital          AccountSubtype = "CAPITAL"
	SubtypeRetainedEarnings AccountSubtype = "RETAINED_EARNINGS"
	SubtypeFeeIncome        AccountSubtype = "FEE_INCOME"
	SubtypeOtherIncome      AccountSubtype = "OTHER_INCOME"
	SubtypeOperatingExpense AccountSubtype = "OPERATING_EXPENSE"
	SubtypeOtherExpense     AccountSubtype = "OTHER_EXPENSE"
)

// subtypeParents maps each subtype to the account type it belongs to.
var subtypeParents = map[AccountSubtype]AccountType{
	SubtypeCash:             Asset,
	SubtypeBank:             Asset,
	SubtypeReceivable:       Asset,
	SubtypeCurrentAsset:     Asset,
	SubtypeFixedAsset:       Asset,
	SubtypePayable:          Liability,
	SubtypeUnearnedRevenue:  Liability,
	SubtypeCurrentLiability: Liability,
	SubtypeCapital:          Equity,
	SubtypeRetainedEarnings: Equity,
	SubtypeFeeIncome:        Income,
	SubtypeOtherIncome:      Income,
	SubtypeOperatingExpense: Expense,
	SubtypeOtherExpense:     Expense,
}

// BelongsTo reports whether the subtype may be used on an account of type t.
// The empty subtype is valid for every type.
func (s AccountSubtype) BelongsTo(t AccountType) bool {
	if s == SubtypeNone {
		return true
	}
	parent, ok := subtypeParents[s]
	return ok && parent == t
}

// Account represents a ledger account owned by a single tenant.
type Account struct {
	AccountID       string          `json:"accountID"`
	TenantID        string          `json:"tenantID"`
	Code            string          `json:"code"` // unique within the tenant
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Subtype         AccountSubtype  `json:"subtype"`
	Description     string          `json:"description"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	IsActive        bool            `json:"isActive"`
	IsSystemAccount bool            `json:"isSystemAccount"`
	ParentAccountID *string         `json:"parentAccountID"`
	AuditFields
}

// AccountRemoval is the outcome of the deletion policy for an account.
type AccountRemoval string

const (
	// RemovalDeactivate keeps the row and flips IsActive off.
	RemovalDeactivate AccountRemoval = "DEACTIVATE"
	// RemovalDelete removes the row entirely.
	RemovalDelete AccountRemoval = "DELETE"
)

// AccountFilter narrows an account listing.
type AccountFilter struct {
	AccountType *AccountType
	ActiveOnly  bool
}
