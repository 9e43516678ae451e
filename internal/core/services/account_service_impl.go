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
	"github.com/SscSPs/school_fee_ledger/internal/dto"
	"github.com/SscSPs/school_fee_ledger/internal/utils/accounting"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxParentDepth bounds the walk up the parent chain when checking for cycles.
const maxParentDepth = 32

// accountServiceImpl implements the AccountSvcFacade interface
type accountServiceImpl struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	validate    *validator.Validate
}

// ServiceOption is a functional option for configuring the account service
type ServiceOption func(*accountServiceImpl)

// WithAccountClock overrides the clock used for audit timestamps.
func WithAccountClock(now func() time.Time) ServiceOption {
	return func(s *accountServiceImpl) {
		s.now = now
	}
}

// NewAccountServiceImpl creates a new account service with the provided options
func NewAccountServiceImpl(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.AccountSvcFacade {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Share the gin binding tags so in-process callers get the same checks as HTTP callers.
	v.SetTagName("binding")

	svc := &accountServiceImpl{
		BaseService: newBaseService(),
		accountRepo: repo,
		validate:    v,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure accountServiceImpl implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountServiceImpl)(nil)

func (s *accountServiceImpl) CreateAccount(ctx context.Context, tenantID string, req dto.CreateAccountRequest, actorID string) (*domain.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if !req.Subtype.BelongsTo(req.AccountType) {
		return nil, fmt.Errorf("%w: subtype %s does not belong to account type %s", apperrors.ErrValidation, req.Subtype, req.AccountType)
	}

	if req.ParentAccountID != nil {
		if err := s.checkParent(ctx, tenantID, "", *req.ParentAccountID); err != nil {
			return nil, err
		}
	}

	opening := decimal.Zero
	if req.OpeningBalance != nil {
		opening = accounting.RoundAmount(*req.OpeningBalance)
	}

	now := s.Now()
	actor := actorOrSystem(actorID)
	account := domain.Account{
		AccountID:       uuid.NewString(),
		TenantID:        tenantID,
		Code:            req.Code,
		Name:            req.Name,
		AccountType:     req.AccountType,
		Subtype:         req.Subtype,
		Description:     req.Description,
		OpeningBalance:  opening,
		IsActive:        true,
		ParentAccountID: req.ParentAccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account",
			slog.String("tenant_id", tenantID),
			slog.String("code", req.Code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("tenant_id", tenantID),
		slog.String("code", account.Code))
	return &account, nil
}

func (s *accountServiceImpl) GetAccountByID(ctx context.Context, tenantID string, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account",
				slog.String("account_id", accountID),
				slog.String("tenant_id", tenantID))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountServiceImpl) ListAccounts(ctx context.Context, tenantID string, filter domain.AccountFilter) ([]domain.Account, error) {
	if filter.AccountType != nil && !filter.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %s", apperrors.ErrValidation, *filter.AccountType)
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("tenant_id", tenantID))
		return nil, err
	}

	s.LogDebug(ctx, "Accounts listed successfully",
		slog.Int("count", len(accounts)),
		slog.String("tenant_id", tenantID))
	return accounts, nil
}

func (s *accountServiceImpl) UpdateAccount(ctx context.Context, tenantID string, accountID string, req dto.UpdateAccountRequest, actorID string) (*domain.Account, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	account, err := s.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if account.IsSystemAccount {
		if req.Code != nil && *req.Code != account.Code {
			return nil, fmt.Errorf("%w: code of system account %s", apperrors.ErrImmutableField, account.Code)
		}
		if req.AccountType != nil && *req.AccountType != account.AccountType {
			return nil, fmt.Errorf("%w: type of system account %s", apperrors.ErrImmutableField, account.Code)
		}
		if req.IsActive != nil && !*req.IsActive {
			return nil, fmt.Errorf("%w: system account %s cannot be deactivated", apperrors.ErrProtectedAccount, account.Code)
		}
	}

	if req.Code != nil && *req.Code != account.Code {
		existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, *req.Code)
		switch {
		case err == nil && existing.AccountID != account.AccountID:
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, *req.Code)
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			s.LogError(ctx, err, "Failed to check account code", slog.String("code", *req.Code))
			return nil, err
		}
		account.Code = *req.Code
	}
	if req.AccountType != nil {
		account.AccountType = *req.AccountType
	}
	if req.Subtype != nil {
		account.Subtype = *req.Subtype
	}
	if !account.Subtype.BelongsTo(account.AccountType) {
		return nil, fmt.Errorf("%w: subtype %s does not belong to account type %s", apperrors.ErrValidation, account.Subtype, account.AccountType)
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.OpeningBalance != nil {
		account.OpeningBalance = accounting.RoundAmount(*req.OpeningBalance)
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.ParentAccountID != nil {
		if *req.ParentAccountID == "" {
			account.ParentAccountID = nil
		} else {
			if err := s.checkParent(ctx, tenantID, account.AccountID, *req.ParentAccountID); err != nil {
				return nil, err
			}
			parentID := *req.ParentAccountID
			account.ParentAccountID = &parentID
		}
	}

	account.LastUpdatedAt = s.Now()
	account.LastUpdatedBy = actorOrSystem(actorID)

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateCode, account.Code)
		}
		s.LogError(ctx, err, "Failed to update account",
			slog.String("account_id", accountID),
			slog.String("tenant_id", tenantID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully",
		slog.String("account_id", account.AccountID),
		slog.String("tenant_id", tenantID))
	return account, nil
}

// decideAccountRemoval is the deletion policy: system accounts are never removed,
// referenced accounts are deactivated, unreferenced accounts are deleted.
func decideAccountRemoval(account domain.Account, hasLines bool) (domain.AccountRemoval, error) {
	if account.IsSystemAccount {
		return "", fmt.Errorf("%w: %s", apperrors.ErrProtectedAccount, account.Code)
	}
	if hasLines {
		return domain.RemovalDeactivate, nil
	}
	return domain.RemovalDelete, nil
}

func (s *accountServiceImpl) DeactivateOrDeleteAccount(ctx context.Context, tenantID string, accountID string, actorID string) (domain.AccountRemoval, error) {
	account, err := s.GetAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return "", err
	}

	hasLines, err := s.accountRepo.AccountHasLines(ctx, tenantID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check account references", slog.String("account_id", accountID))
		return "", err
	}

	outcome, err := decideAccountRemoval(*account, hasLines)
	if err != nil {
		return "", err
	}

	switch outcome {
	case domain.RemovalDeactivate:
		account.IsActive = false
		account.LastUpdatedAt = s.Now()
		account.LastUpdatedBy = actorOrSystem(actorID)
		err = s.accountRepo.UpdateAccount(ctx, *account)
	case domain.RemovalDelete:
		err = s.accountRepo.DeleteAccount(ctx, tenantID, accountID)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to remove account",
			slog.String("account_id", accountID),
			slog.String("outcome", string(outcome)))
		return "", err
	}

	s.LogInfo(ctx, "Account removed",
		slog.String("account_id", accountID),
		slog.String("tenant_id", tenantID),
		slog.String("outcome", string(outcome)))
	return outcome, nil
}

func (s *accountServiceImpl) BootstrapDefaultChart(ctx context.Context, tenantID string, actorID string) ([]domain.Account, error) {
	now := s.Now()
	actor := actorOrSystem(actorID)
	result := make([]domain.Account, 0, len(defaultChart))
	created := 0

	for _, tmpl := range defaultChart {
		existing, err := s.accountRepo.FindAccountByCode(ctx, tenantID, tmpl.Code)
		if err == nil {
			result = append(result, *existing)
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up default account", slog.String("code", tmpl.Code))
			return nil, err
		}

		account := tmpl.build(tenantID, actor, now)
		if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicate) {
				s.LogError(ctx, err, "Failed to create default account", slog.String("code", tmpl.Code))
				return nil, err
			}
			// Created concurrently by another bootstrap call.
			existing, err = s.accountRepo.FindAccountByCode(ctx, tenantID, tmpl.Code)
			if err != nil {
				return nil, err
			}
			result = append(result, *existing)
			continue
		}
		created++
		result = append(result, account)
	}

	s.LogInfo(ctx, "Default chart of accounts bootstrapped",
		slog.String("tenant_id", tenantID),
		slog.Int("created", created),
		slog.Int("total", len(result)))
	return result, nil
}

// checkParent verifies the parent exists in the tenant and that linking selfID
// under it would not form a cycle. selfID is empty for new accounts.
func (s *accountServiceImpl) checkParent(ctx context.Context, tenantID, selfID, parentID string) error {
	if parentID == selfID {
		return fmt.Errorf("%w: account cannot be its own parent", apperrors.ErrValidation)
	}
	current := parentID
	for depth := 0; depth < maxParentDepth; depth++ {
		parent, err := s.accountRepo.FindAccountByID(ctx, tenantID, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, current)
			}
			return err
		}
		if parent.ParentAccountID == nil {
			return nil
		}
		if selfID != "" && *parent.ParentAccountID == selfID {
			return fmt.Errorf("%w: parent %s would create a cycle", apperrors.ErrValidation, parentID)
		}
		current = *parent.ParentAccountID
	}
	return fmt.Errorf("%w: account hierarchy deeper than %d levels", apperrors.ErrValidation, maxParentDepth)
}
