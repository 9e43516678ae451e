package pgsql

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// pgxLedgerRepository aggregates posted lines for balances and reports.
type pgxLedgerRepository struct {
	BaseRepository
}

// Ensure pgxLedgerRepository implements portsrepo.LedgerQueryRepository
var _ portsrepo.LedgerQueryRepository = (*pgxLedgerRepository)(nil)

// postedScope builds the WHERE clause shared by every ledger query. Reversed
// entries stay in the books alongside the mirror entry that cancels them.
func postedScope(tenantID string, accountID *string, from, to *time.Time) (string, []any) {
	conditions := []string{"e.tenant_id = $1", "e.status IN ('POSTED', 'REVERSED')"}
	args := []any{tenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if accountID != nil {
		add("l.account_id = ?", *accountID)
	}
	if from != nil {
		add("e.entry_date >= ?::date", *from)
	}
	if to != nil {
		add("e.entry_date <= ?::date", *to)
	}
	return strings.Join(conditions, " AND "), args
}

func (r *pgxLedgerRepository) SumPostedByAccount(ctx context.Context, tenantID, accountID string, from, to *time.Time) (domain.AccountMovement, error) {
	where, args := postedScope(tenantID, &accountID, from, to)
	query := `
		SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.journal_entry_id = l.journal_entry_id
		WHERE ` + where

	movement := domain.AccountMovement{AccountID: accountID}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&movement.Debit, &movement.Credit); err != nil {
		return domain.AccountMovement{}, translateError(err, "failed to sum posted lines for account "+accountID)
	}
	return movement, nil
}

func (r *pgxLedgerRepository) SumPostedByTenant(ctx context.Context, tenantID string, from, to *time.Time) (map[string]domain.AccountMovement, error) {
	where, args := postedScope(tenantID, nil, from, to)
	query := `
		SELECT l.account_id, SUM(l.debit_amount), SUM(l.credit_amount)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.journal_entry_id = l.journal_entry_id
		WHERE ` + where + `
		GROUP BY l.account_id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to sum posted lines for tenant "+tenantID)
	}
	movements, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AccountMovement, error) {
		var m domain.AccountMovement
		err := row.Scan(&m.AccountID, &m.Debit, &m.Credit)
		return m, err
	})
	if err != nil {
		return nil, translateError(err, "failed to scan posted sums for tenant "+tenantID)
	}

	result := make(map[string]domain.AccountMovement, len(movements))
	for _, m := range movements {
		result[m.AccountID] = m
	}
	return result, nil
}

func (r *pgxLedgerRepository) ListPostedLinesByAccount(ctx context.Context, tenantID, accountID string, from, to *time.Time) ([]domain.LedgerLine, error) {
	where, args := postedScope(tenantID, &accountID, from, to)
	query := `
		SELECT l.line_id, l.journal_entry_id, l.account_id, l.debit_amount, l.credit_amount,
		       COALESCE(l.description, ''), l.line_order,
		       e.entry_number, e.entry_date, e.entry_type, e.description
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.journal_entry_id = l.journal_entry_id
		WHERE ` + where + `
		ORDER BY e.entry_date, e.journal_entry_id, l.line_order`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "failed to list posted lines for account "+accountID)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.LedgerLine, error) {
		var (
			l         domain.LedgerLine
			entryType string
		)
		err := row.Scan(
			&l.LineID,
			&l.JournalEntryID,
			&l.AccountID,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.Description,
			&l.LineOrder,
			&l.EntryNumber,
			&l.EntryDate,
			&entryType,
			&l.EntryDesc,
		)
		l.EntryType = domain.JournalEntryType(entryType)
		l.RunningBalance = decimal.Zero
		return l, err
	})
	if err != nil {
		return nil, translateError(err, "failed to scan posted lines for account "+accountID)
	}
	return lines, nil
}
