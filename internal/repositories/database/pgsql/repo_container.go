package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds repositories backed directly by the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return newProvider(BaseRepository{db: dbPool})
}

func newProvider(base BaseRepository) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  &pgxAccountRepository{BaseRepository: base},
		JournalRepo:  &pgxJournalRepository{BaseRepository: base},
		LedgerRepo:   &pgxLedgerRepository{BaseRepository: base},
		SequenceRepo: &pgxSequenceRepository{BaseRepository: base},
	}
}

// TxManager runs units of work in a READ COMMITTED transaction. Row locks taken
// with SELECT ... FOR UPDATE and the sequence upsert serialize competing writers.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager over the pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

var _ portsrepo.TransactionManager = (*TxManager)(nil)

func (m *TxManager) WithTransaction(ctx context.Context, fn func(repos portsrepo.RepositoryProvider) error) error {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.WarnContext(ctx, "Failed to roll back transaction", slog.String("error", rbErr.Error()))
		}
	}()

	if err := fn(newProvider(BaseRepository{db: tx, inTx: true})); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
