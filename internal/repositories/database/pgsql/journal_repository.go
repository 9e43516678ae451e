package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_fee_ledger/internal/models"
	"github.com/SscSPs/school_fee_ledger/internal/utils/mapping"
	"github.com/SscSPs/school_fee_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `journal_entry_id, tenant_id, entry_number, entry_date, entry_type, status, description,
	reference, reference_id, notes, total_debit, total_credit,
	posted_by, posted_at, reversed_by, reversed_at, reversed_entry_id, reversal_of_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

type pgxJournalRepository struct {
	BaseRepository
}

// Ensure pgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*pgxJournalRepository)(nil)

func (r *pgxJournalRepository) findEntry(ctx context.Context, tenantID, entryID, suffix string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND journal_entry_id = $2` + suffix
	rows, err := r.db.Query(ctx, query, tenantID, entryID)
	if err != nil {
		return nil, translateError(err, "failed to find journal entry "+entryID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, translateError(err, "failed to scan journal entry "+entryID)
	}
	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

func (r *pgxJournalRepository) FindJournalEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return r.findEntry(ctx, tenantID, entryID, "")
}

func (r *pgxJournalRepository) FindJournalEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	if err := r.requireTx("FindJournalEntryForUpdate"); err != nil {
		return nil, err
	}
	return r.findEntry(ctx, tenantID, entryID, " FOR UPDATE")
}

func scanEntryLine(row pgx.CollectableRow) (models.JournalEntryLine, error) {
	var l models.JournalEntryLine
	err := row.Scan(
		&l.LineID,
		&l.JournalEntryID,
		&l.AccountID,
		&l.DebitAmount,
		&l.CreditAmount,
		&l.Description,
		&l.LineOrder,
		&l.AccountCode,
		&l.AccountName,
	)
	return l, err
}

func (r *pgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `
		SELECT l.line_id, l.journal_entry_id, l.account_id, l.debit_amount, l.credit_amount,
		       l.description, l.line_order, a.code, a.name
		FROM journal_entry_lines l
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.journal_entry_id = $1
		ORDER BY l.line_order`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, translateError(err, "failed to query lines for journal entry "+entryID)
	}
	lines, err := pgx.CollectRows(rows, scanEntryLine)
	if err != nil {
		return nil, translateError(err, "failed to scan lines for journal entry "+entryID)
	}
	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// ListJournalEntries pages newest first with a keyset cursor on (entry_date, journal_entry_id).
func (r *pgxJournalRepository) ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error) {
	limit := pagination.ClampLimit(filter.Limit)

	conditions := []string{"tenant_id = $1"}
	args := []any{tenantID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.EntryType != nil {
		conditions = append(conditions, "entry_type = "+next(string(*filter.EntryType)))
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = "+next(string(*filter.Status)))
	}
	if filter.From != nil {
		conditions = append(conditions, "entry_date >= "+next(*filter.From)+"::date")
	}
	if filter.To != nil {
		conditions = append(conditions, "entry_date <= "+next(*filter.To)+"::date")
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		afterDate, afterID, err := pagination.DecodeEntryToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		conditions = append(conditions, "(entry_date, journal_entry_id) < ("+next(afterDate)+"::date, "+next(afterID)+")")
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY entry_date DESC, journal_entry_id DESC LIMIT ` + next(limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, translateError(err, "failed to list journal entries for tenant "+tenantID)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, nil, translateError(err, "failed to scan journal entries for tenant "+tenantID)
	}

	var nextToken *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[limit-1]
		token := pagination.EncodeEntryToken(last.EntryDate, last.JournalEntryID)
		nextToken = &token
	}

	entries := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		entries[i] = mapping.ToDomainJournalEntry(m)
	}
	return entries, nextToken, nil
}

// SaveJournalEntry inserts the header, then the lines in one batch.
func (r *pgxJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	if err := r.requireTx("SaveJournalEntry"); err != nil {
		return err
	}

	m := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.db.Exec(ctx, entryQuery,
		m.JournalEntryID, m.TenantID, m.EntryNumber, m.EntryDate, m.EntryType, m.Status, m.Description,
		m.Reference, m.ReferenceID, m.Notes, m.TotalDebit, m.TotalCredit,
		m.PostedBy, m.PostedAt, m.ReversedBy, m.ReversedAt, m.ReversedEntryID, m.ReversalOfEntryID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return translateError(err, "failed to insert journal entry "+m.EntryNumber)
	}

	lineQuery := `
		INSERT INTO journal_entry_lines (line_id, journal_entry_id, account_id, debit_amount, credit_amount, description, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	batch := &pgx.Batch{}
	for _, line := range lines {
		l := mapping.ToModelJournalEntryLine(line)
		batch.Queue(lineQuery, l.LineID, l.JournalEntryID, l.AccountID, l.DebitAmount, l.CreditAmount, l.Description, l.LineOrder)
	}
	br := r.db.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return translateError(err, "failed to insert lines for journal entry "+m.EntryNumber)
	}
	return nil
}

// transition applies a status change guarded by the expected current status.
func (r *pgxJournalRepository) transition(ctx context.Context, tenantID, entryID string, from domain.JournalStatus, set string, args ...any) error {
	if err := r.requireTx("journal entry status change"); err != nil {
		return err
	}
	query := `UPDATE journal_entries SET ` + set + ` WHERE tenant_id = $1 AND journal_entry_id = $2 AND status = $3`
	tag, err := r.db.Exec(ctx, query, append([]any{tenantID, entryID, string(from)}, args...)...)
	if err != nil {
		return translateError(err, "failed to update journal entry "+entryID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := r.FindJournalEntryByID(ctx, tenantID, entryID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: entry %s is %s", apperrors.ErrInvalidTransition, current.EntryNumber, current.Status)
}

func (r *pgxJournalRepository) MarkJournalEntryPosted(ctx context.Context, tenantID, entryID, actorID string, at time.Time) error {
	return r.transition(ctx, tenantID, entryID, domain.Draft,
		`status = 'POSTED', posted_by = $4, posted_at = $5, last_updated_by = $4, last_updated_at = $5`,
		actorID, at)
}

func (r *pgxJournalRepository) MarkJournalEntryReversed(ctx context.Context, tenantID, entryID, reversalEntryID, actorID string, at time.Time) error {
	return r.transition(ctx, tenantID, entryID, domain.Posted,
		`status = 'REVERSED', reversed_by = $4, reversed_at = $5, reversed_entry_id = $6, last_updated_by = $4, last_updated_at = $5`,
		actorID, at, reversalEntryID)
}
