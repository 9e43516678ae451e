package pgsql

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

// pgxSequenceRepository allocates entry numbers from journal_entry_sequences.
// The counter row stays locked until the surrounding transaction ends, so
// concurrent postings for one tenant queue behind each other.
type pgxSequenceRepository struct {
	BaseRepository
}

var _ portsrepo.SequenceRepository = (*pgxSequenceRepository)(nil)

func (r *pgxSequenceRepository) NextJournalSequence(ctx context.Context, tenantID string, year int, prefix string) (int64, error) {
	if err := r.requireTx("NextJournalSequence"); err != nil {
		return 0, err
	}

	var next int64
	err := r.db.QueryRow(ctx, `
		UPDATE journal_entry_sequences
		SET last_value = last_value + 1
		WHERE tenant_id = $1 AND prefix = $2 AND year = $3
		RETURNING last_value`, tenantID, prefix, year).Scan(&next)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, translateError(err, "failed to advance journal sequence")
	}

	// First number of the year: seed from whatever entries already carry the
	// prefix so imported or pre-existing numbers are never reissued.
	pattern := fmt.Sprintf(`^%s-%d-\d+$`, regexp.QuoteMeta(prefix), year)
	err = r.db.QueryRow(ctx, `
		INSERT INTO journal_entry_sequences (tenant_id, prefix, year, last_value)
		SELECT $1::text, $2::text, $3::int, COALESCE(MAX(substring(entry_number from '(\d+)$')::bigint), 0) + 1
		FROM journal_entries
		WHERE tenant_id = $1 AND entry_number ~ $4
		ON CONFLICT (tenant_id, prefix, year)
		DO UPDATE SET last_value = journal_entry_sequences.last_value + 1
		RETURNING last_value`, tenantID, prefix, year, pattern).Scan(&next)
	if err != nil {
		return 0, translateError(err, fmt.Sprintf("failed to seed journal sequence for %s-%d", prefix, year))
	}
	return next, nil
}
