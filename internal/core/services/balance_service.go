package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_fee_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_fee_ledger/internal/utils/accounting"
)

// balanceService computes balances and ledgers from posted lines. It only reads.
type balanceService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	ledgerRepo  portsrepo.LedgerQueryRepository
}

// NewBalanceService creates a new balance calculator.
func NewBalanceService(accountRepo portsrepo.AccountReader, ledgerRepo portsrepo.LedgerQueryRepository) portssvc.BalanceSvc {
	return &balanceService{
		BaseService: newBaseService(),
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func (s *balanceService) loadAccount(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for balance",
				slog.String("tenant_id", tenantID),
				slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *balanceService) GetAccountBalance(ctx context.Context, tenantID string, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	account, err := s.loadAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	movement, err := s.ledgerRepo.SumPostedByAccount(ctx, tenantID, accountID, nil, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted lines", slog.String("account_id", accountID))
		return nil, err
	}

	balance, err := accounting.SignedBalance(account.AccountType, account.OpeningBalance, movement.Debit, movement.Credit)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account.Code, err)
	}

	return &domain.AccountBalance{
		AccountID: accountID,
		Debit:     movement.Debit,
		Credit:    movement.Credit,
		Balance:   balance,
	}, nil
}

func (s *balanceService) GetAccountLedger(ctx context.Context, tenantID string, accountID string, from, to *time.Time) ([]domain.LedgerLine, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}

	account, err := s.loadAccount(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	running := account.OpeningBalance
	if from != nil {
		dayBefore := from.AddDate(0, 0, -1)
		prior, err := s.ledgerRepo.SumPostedByAccount(ctx, tenantID, accountID, nil, &dayBefore)
		if err != nil {
			s.LogError(ctx, err, "Failed to sum prior activity", slog.String("account_id", accountID))
			return nil, err
		}
		running, err = accounting.SignedBalance(account.AccountType, running, prior.Debit, prior.Credit)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", account.Code, err)
		}
	}

	lines, err := s.ledgerRepo.ListPostedLinesByAccount(ctx, tenantID, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger lines", slog.String("account_id", accountID))
		return nil, err
	}

	for i := range lines {
		movement, err := accounting.LineMovement(account.AccountType, lines[i].JournalEntryLine)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", account.Code, err)
		}
		running = running.Add(movement)
		lines[i].RunningBalance = running
		lines[i].AccountCode = account.Code
		lines[i].AccountName = account.Name
	}

	s.LogDebug(ctx, "Account ledger generated",
		slog.String("account_id", accountID),
		slog.Int("line_count", len(lines)))
	return lines, nil
}
