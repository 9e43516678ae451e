package services

import (
	"context"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance generates a trial balance, optionally as of a date.
	TrialBalance(ctx context.Context, tenantID string, asOf *time.Time) (*domain.TrialBalanceReport, error)

	// ProfitAndLoss generates a profit and loss report for [from, to].
	ProfitAndLoss(ctx context.Context, tenantID string, from, to time.Time) (*domain.PAndLReport, error)

	// BalanceSheet generates a balance sheet as of a date.
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)
}
