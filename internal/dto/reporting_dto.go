package dto

import (
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	AccountType    string          `json:"accountType"`
	OpeningBalance decimal.Decimal `json:"openingBalance" swaggertype:"string"`
	Debit          decimal.Decimal `json:"debit" swaggertype:"string"`
	Credit         decimal.Decimal `json:"credit" swaggertype:"string"`
	Balance        decimal.Decimal `json:"balance" swaggertype:"string"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	AsOf   *Date                     `json:"asOf,omitempty" swaggertype:"string"`
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit" swaggertype:"string"`
		Credit decimal.Decimal `json:"credit" swaggertype:"string"`
	} `json:"totals"`
}

// AccountAmountResponse represents an account with its amount in a financial report
type AccountAmountResponse struct {
	AccountID string          `json:"accountID,omitempty"`
	Code      string          `json:"code,omitempty"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
}

// ProfitAndLossResponse represents the profit and loss report response
type ProfitAndLossResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Income   []AccountAmountResponse `json:"income"`
	Expenses []AccountAmountResponse `json:"expenses"`
	Summary  struct {
		TotalIncome   decimal.Decimal `json:"totalIncome" swaggertype:"string"`
		TotalExpenses decimal.Decimal `json:"totalExpenses" swaggertype:"string"`
		NetProfit     decimal.Decimal `json:"netProfit" swaggertype:"string"`
	} `json:"summary"`
}

// BalanceSheetResponse represents the balance sheet report response
type BalanceSheetResponse struct {
	AsOf        string                  `json:"asOf"`
	Assets      []AccountAmountResponse `json:"assets"`
	Liabilities []AccountAmountResponse `json:"liabilities"`
	Equity      []AccountAmountResponse `json:"equity"`
	Summary     struct {
		TotalAssets      decimal.Decimal `json:"totalAssets" swaggertype:"string"`
		TotalLiabilities decimal.Decimal `json:"totalLiabilities" swaggertype:"string"`
		TotalEquity      decimal.Decimal `json:"totalEquity" swaggertype:"string"`
		CurrentEarnings  decimal.Decimal `json:"currentEarnings" swaggertype:"string"`
		Balance          decimal.Decimal `json:"balance" swaggertype:"string"`
		Balanced         bool            `json:"balanced"`
	} `json:"summary"`
}

func toAccountAmountResponses(items []domain.AccountAmount) []AccountAmountResponse {
	res := make([]AccountAmountResponse, len(items))
	for i, item := range items {
		res[i] = AccountAmountResponse{
			AccountID: item.AccountID,
			Code:      item.Code,
			Name:      item.Name,
			Amount:    item.NetAmount,
		}
	}
	return res
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(report *domain.TrialBalanceReport) TrialBalanceResponse {
	response := TrialBalanceResponse{
		Rows: make([]TrialBalanceRowResponse, len(report.Rows)),
	}
	if report.AsOf != nil {
		d := NewDate(*report.AsOf)
		response.AsOf = &d
	}

	for i, row := range report.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountID:      row.AccountID,
			Code:           row.Code,
			Name:           row.Name,
			AccountType:    string(row.AccountType),
			OpeningBalance: row.OpeningBalance,
			Debit:          row.Debit,
			Credit:         row.Credit,
			Balance:        row.Balance,
		}
	}

	response.Totals.Debit = report.TotalDebit
	response.Totals.Credit = report.TotalCredit
	return response
}

// ToProfitAndLossResponse converts a domain P&L report to a DTO response
func ToProfitAndLossResponse(report *domain.PAndLReport) ProfitAndLossResponse {
	response := ProfitAndLossResponse{
		FromDate: report.From.Format(DateLayout),
		ToDate:   report.To.Format(DateLayout),
		Income:   toAccountAmountResponses(report.Income),
		Expenses: toAccountAmountResponses(report.Expenses),
	}
	response.Summary.TotalIncome = report.TotalIncome
	response.Summary.TotalExpenses = report.TotalExpenses
	response.Summary.NetProfit = report.NetProfit
	return response
}

// ToBalanceSheetResponse converts a domain balance sheet report to a DTO response
func ToBalanceSheetResponse(report *domain.BalanceSheetReport) BalanceSheetResponse {
	response := BalanceSheetResponse{
		AsOf:        report.AsOf.Format(DateLayout),
		Assets:      toAccountAmountResponses(report.Assets),
		Liabilities: toAccountAmountResponses(report.Liabilities),
		Equity:      toAccountAmountResponses(report.Equity),
	}
	response.Summary.TotalAssets = report.TotalAssets
	response.Summary.TotalLiabilities = report.TotalLiabilities
	response.Summary.TotalEquity = report.TotalEquity
	response.Summary.CurrentEarnings = report.CurrentEarnings
	response.Summary.Balance = report.Balance
	response.Summary.Balanced = report.Balanced
	return response
}
