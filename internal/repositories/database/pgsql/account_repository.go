package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_fee_ledger/internal/models"
	"github.com/SscSPs/school_fee_ledger/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, subtype, description,
	opening_balance, is_active, is_system_account, parent_account_id,
	created_at, created_by, last_updated_at, last_updated_by`

type pgxAccountRepository struct {
	BaseRepository
}

// Ensure pgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*pgxAccountRepository)(nil)

func (r *pgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
}

func (r *pgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND account_id = $2`, tenantID, accountID)
	if err != nil {
		return nil, translateError(err, "failed to find account "+accountID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, "failed to scan account "+accountID)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *pgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND code = $2`, tenantID, code)
	if err != nil {
		return nil, translateError(err, "failed to find account by code "+code)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, "failed to scan account "+code)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func (r *pgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	// Ids that are not UUIDs cannot match a row; the caller reports them as unknown.
	valid := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return map[string]domain.Account{}, nil
	}
	ms, err := r.queryAccounts(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2)`, tenantID, valid)
	if err != nil {
		return nil, translateError(err, "failed to query accounts by IDs")
	}
	result := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		result[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return result, nil
}

func (r *pgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, filter domain.AccountFilter) ([]domain.Account, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}
	if filter.AccountType != nil {
		args = append(args, string(*filter.AccountType))
		conditions = append(conditions, "account_type = $"+strconv.Itoa(len(args)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY code`
	ms, err := r.queryAccounts(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list accounts for tenant "+tenantID)
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

func (r *pgxAccountRepository) AccountHasLines(ctx context.Context, tenantID, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM journal_entry_lines l
			JOIN journal_entries e ON e.journal_entry_id = l.journal_entry_id
			WHERE e.tenant_id = $1 AND l.account_id = $2
		)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, tenantID, accountID).Scan(&exists); err != nil {
		return false, translateError(err, "failed to check lines for account "+accountID)
	}
	return exists, nil
}

func (r *pgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(ctx, query,
		m.AccountID, m.TenantID, m.Code, m.Name, m.AccountType, m.Subtype, m.Description,
		m.OpeningBalance, m.IsActive, m.IsSystemAccount, m.ParentAccountID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return translateError(err, fmt.Sprintf("failed to save account %s", m.Code))
}

func (r *pgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET code = $3, name = $4, account_type = $5, subtype = $6, description = $7,
		    opening_balance = $8, is_active = $9, parent_account_id = $10,
		    last_updated_at = $11, last_updated_by = $12
		WHERE tenant_id = $1 AND account_id = $2`
	tag, err := r.db.Exec(ctx, query,
		m.TenantID, m.AccountID, m.Code, m.Name, m.AccountType, m.Subtype, m.Description,
		m.OpeningBalance, m.IsActive, m.ParentAccountID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to update account %s", m.AccountID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *pgxAccountRepository) DeleteAccount(ctx context.Context, tenantID, accountID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE tenant_id = $1 AND account_id = $2`, tenantID, accountID)
	if err != nil {
		return translateError(err, fmt.Sprintf("failed to delete account %s", accountID))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
