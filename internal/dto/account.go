package dto

import (
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new account.
type CreateAccountRequest struct {
	Code            string                `json:"code" binding:"required,max=20"`
	Name            string                `json:"name" binding:"required,max=255"`
	AccountType     domain.AccountType    `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Subtype         domain.AccountSubtype `json:"subtype" binding:"omitempty,max=50"`
	Description     string                `json:"description" binding:"max=1000"`
	OpeningBalance  *decimal.Decimal      `json:"openingBalance" swaggertype:"string" example:"0.00"` // defaults to 0
	ParentAccountID *string               `json:"parentAccountID" binding:"omitempty,uuid"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Code            *string                `json:"code" binding:"omitempty,min=1,max=20"`
	Name            *string                `json:"name" binding:"omitempty,min=1,max=255"`
	AccountType     *domain.AccountType    `json:"accountType" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	Subtype         *domain.AccountSubtype `json:"subtype" binding:"omitempty,max=50"`
	Description     *string                `json:"description" binding:"omitempty,max=1000"`
	OpeningBalance  *decimal.Decimal       `json:"openingBalance" swaggertype:"string"`
	ParentAccountID *string                `json:"parentAccountID" binding:"omitempty,uuid|eq="` // "" clears the parent
	IsActive        *bool                  `json:"isActive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID       string                `json:"accountID"`
	TenantID        string                `json:"tenantID"`
	Code            string                `json:"code"`
	Name            string                `json:"name"`
	AccountType     domain.AccountType    `json:"accountType"`
	Subtype         domain.AccountSubtype `json:"subtype,omitempty"`
	Description     string                `json:"description"`
	OpeningBalance  decimal.Decimal       `json:"openingBalance" swaggertype:"string"`
	IsActive        bool                  `json:"isActive"`
	IsSystemAccount bool                  `json:"isSystemAccount"`
	ParentAccountID *string               `json:"parentAccountID,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	CreatedBy       string                `json:"createdBy"`
	LastUpdatedAt   time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy   string                `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:       acc.AccountID,
		TenantID:        acc.TenantID,
		Code:            acc.Code,
		Name:            acc.Name,
		AccountType:     acc.AccountType,
		Subtype:         acc.Subtype,
		Description:     acc.Description,
		OpeningBalance:  acc.OpeningBalance,
		IsActive:        acc.IsActive,
		IsSystemAccount: acc.IsSystemAccount,
		ParentAccountID: acc.ParentAccountID,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	AccountType string `form:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"`
	ActiveOnly  bool   `form:"activeOnly"`
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// DeleteAccountResponse reports what happened to a removed account.
type DeleteAccountResponse struct {
	AccountID string                `json:"accountID"`
	Outcome   domain.AccountRemoval `json:"outcome"` // DEACTIVATE or DELETE
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	AsOf      *Date           `json:"asOf,omitempty" swaggertype:"string"`
	Debit     decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit    decimal.Decimal `json:"credit" swaggertype:"string"`
	Balance   decimal.Decimal `json:"balance" swaggertype:"string"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance to its DTO
func ToAccountBalanceResponse(b *domain.AccountBalance, asOf *time.Time) AccountBalanceResponse {
	res := AccountBalanceResponse{
		AccountID: b.AccountID,
		Debit:     b.Debit,
		Credit:    b.Credit,
		Balance:   b.Balance,
	}
	if asOf != nil {
		d := NewDate(*asOf)
		res.AsOf = &d
	}
	return res
}

// LedgerLineResponse is one row of an account ledger.
type LedgerLineResponse struct {
	JournalEntryID   string          `json:"journalEntryID"`
	EntryNumber      string          `json:"entryNumber"`
	EntryDate        Date            `json:"entryDate" swaggertype:"string"`
	EntryType        string          `json:"entryType"`
	EntryDescription string          `json:"entryDescription"`
	LineID           string          `json:"lineID"`
	Description      string          `json:"description"`
	Debit            decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit           decimal.Decimal `json:"credit" swaggertype:"string"`
	RunningBalance   decimal.Decimal `json:"runningBalance" swaggertype:"string"`
}

// AccountLedgerResponse wraps the ledger rows of one account.
type AccountLedgerResponse struct {
	AccountID string               `json:"accountID"`
	Lines     []LedgerLineResponse `json:"lines"`
}

// ToAccountLedgerResponse converts ledger lines to their DTO
func ToAccountLedgerResponse(accountID string, lines []domain.LedgerLine) AccountLedgerResponse {
	res := AccountLedgerResponse{
		AccountID: accountID,
		Lines:     make([]LedgerLineResponse, len(lines)),
	}
	for i, l := range lines {
		res.Lines[i] = LedgerLineResponse{
			JournalEntryID:   l.JournalEntryID,
			EntryNumber:      l.EntryNumber,
			EntryDate:        NewDate(l.EntryDate),
			EntryType:        string(l.EntryType),
			EntryDescription: l.EntryDesc,
			LineID:           l.LineID,
			Description:      l.Description,
			Debit:            l.DebitAmount,
			Credit:           l.CreditAmount,
			RunningBalance:   l.RunningBalance,
		}
	}
	return res
}
