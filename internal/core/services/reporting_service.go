package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_fee_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_fee_ledger/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// CurrentEarningsName labels the computed equity line on the balance sheet.
const CurrentEarningsName = "Current Earnings"

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	ledgerRepo  portsrepo.LedgerQueryRepository
}

// NewReportingService creates a new reporting service
func NewReportingService(accountRepo portsrepo.AccountReader, ledgerRepo portsrepo.LedgerQueryRepository) portssvc.ReportingService {
	return &reportingService{
		BaseService: newBaseService(),
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// accountPosition is one account with its movement and signed balance.
type accountPosition struct {
	Account  domain.Account
	Movement domain.AccountMovement
	Balance  decimal.Decimal
}

// hasActivity reports whether the account carries anything worth showing.
func (p accountPosition) hasActivity() bool {
	return !p.Movement.Debit.IsZero() || !p.Movement.Credit.IsZero() || !p.Account.OpeningBalance.IsZero()
}

// positions loads every account of the tenant, ordered by code, with its movement
// over [from, to]. Opening balances are included in Balance only when withOpening is set.
func (s *reportingService) positions(ctx context.Context, tenantID string, from, to *time.Time, withOpening bool) ([]accountPosition, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, domain.AccountFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	movements, err := s.ledgerRepo.SumPostedByTenant(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum posted lines: %w", err)
	}

	result := make([]accountPosition, 0, len(accounts))
	for _, acc := range accounts {
		mv, ok := movements[acc.AccountID]
		if !ok {
			mv = domain.AccountMovement{AccountID: acc.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
		}
		opening := decimal.Zero
		if withOpening {
			opening = acc.OpeningBalance
		}
		balance, err := accounting.SignedBalance(acc.AccountType, opening, mv.Debit, mv.Credit)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.Code, err)
		}
		result = append(result, accountPosition{Account: acc, Movement: mv, Balance: balance})
	}
	return result, nil
}

// TrialBalance lists every active account, plus inactive accounts that still carry
// activity, so the debit and credit columns always cover the whole ledger.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string, asOf *time.Time) (*domain.TrialBalanceReport, error) {
	positions, err := s.positions(ctx, tenantID, nil, asOf, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to build trial balance", slog.String("tenant_id", tenantID))
		return nil, err
	}

	report := &domain.TrialBalanceReport{
		AsOf:        asOf,
		Rows:        make([]domain.TrialBalanceRow, 0, len(positions)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, p := range positions {
		if !p.Account.IsActive && !p.hasActivity() {
			continue
		}
		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			AccountID:      p.Account.AccountID,
			Code:           p.Account.Code,
			Name:           p.Account.Name,
			AccountType:    p.Account.AccountType,
			OpeningBalance: p.Account.OpeningBalance,
			Debit:          p.Movement.Debit,
			Credit:         p.Movement.Credit,
			Balance:        p.Balance,
		})
		report.TotalDebit = report.TotalDebit.Add(p.Movement.Debit)
		report.TotalCredit = report.TotalCredit.Add(p.Movement.Credit)
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// ProfitAndLoss generates a profit and loss report for a specific period
func (s *reportingService) ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}

	positions, err := s.positions(ctx, tenantID, &from, &to, false)
	if err != nil {
		s.LogError(ctx, err, "Failed to build profit and loss", slog.String("tenant_id", tenantID))
		return nil, err
	}

	report := &domain.PAndLReport{
		From:          from,
		To:            to,
		Income:        []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, p := range positions {
		active := p.Account.IsActive || !p.Movement.Debit.IsZero() || !p.Movement.Credit.IsZero()
		if !active {
			continue
		}
		item := domain.AccountAmount{
			AccountID: p.Account.AccountID,
			Code:      p.Account.Code,
			Name:      p.Account.Name,
		}
		switch p.Account.AccountType {
		case domain.Income:
			item.NetAmount = p.Movement.Credit.Sub(p.Movement.Debit)
			report.Income = append(report.Income, item)
			report.TotalIncome = report.TotalIncome.Add(item.NetAmount)
		case domain.Expense:
			item.NetAmount = p.Movement.Debit.Sub(p.Movement.Credit)
			report.Expenses = append(report.Expenses, item)
			report.TotalExpenses = report.TotalExpenses.Add(item.NetAmount)
		case domain.Asset, domain.Liability, domain.Equity:
			// balance sheet accounts
		}
	}
	report.NetProfit = report.TotalIncome.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Profit and loss report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.String("net_profit", report.NetProfit.StringFixed(2)))
	return report, nil
}

// BalanceSheet generates a balance sheet as of a date. Income and expense balances
// are folded into a single current earnings line under equity.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	positions, err := s.positions(ctx, tenantID, nil, &asOf, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to build balance sheet", slog.String("tenant_id", tenantID))
		return nil, err
	}

	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		CurrentEarnings:  decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, p := range positions {
		item := domain.AccountAmount{
			AccountID: p.Account.AccountID,
			Code:      p.Account.Code,
			Name:      p.Account.Name,
			NetAmount: p.Balance,
		}
		show := p.Account.IsActive || !p.Balance.IsZero()
		switch p.Account.AccountType {
		case domain.Asset:
			report.TotalAssets = report.TotalAssets.Add(p.Balance)
			if show {
				report.Assets = append(report.Assets, item)
			}
		case domain.Liability:
			report.TotalLiabilities = report.TotalLiabilities.Add(p.Balance)
			if show {
				report.Liabilities = append(report.Liabilities, item)
			}
		case domain.Equity:
			report.TotalEquity = report.TotalEquity.Add(p.Balance)
			if show {
				report.Equity = append(report.Equity, item)
			}
		case domain.Income:
			report.CurrentEarnings = report.CurrentEarnings.Add(p.Balance)
		case domain.Expense:
			report.CurrentEarnings = report.CurrentEarnings.Sub(p.Balance)
		}
	}

	if !report.CurrentEarnings.IsZero() {
		report.Equity = append(report.Equity, domain.AccountAmount{
			Name:      CurrentEarningsName,
			NetAmount: report.CurrentEarnings,
		})
	}
	report.TotalEquity = report.TotalEquity.Add(report.CurrentEarnings)
	report.Balance = report.TotalAssets.Sub(report.TotalLiabilities.Add(report.TotalEquity))
	report.Balanced = report.Balance.IsZero()

	if !report.Balanced {
		s.GetLogger(ctx).Error("Balance sheet does not balance",
			slog.String("tenant_id", tenantID),
			slog.String("as_of", asOf.Format("2006-01-02")),
			slog.String("difference", report.Balance.StringFixed(2)))
	}
	return report, nil
}
