package pgsql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_fee_ledger/internal/repositories/database/pgsql"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PgsqlRepositoriesTestSuite runs against a real database named by TEST_DATABASE_URL.
type PgsqlRepositoriesTestSuite struct {
	suite.Suite
	ctx    context.Context
	pool   *pgxpool.Pool
	repos  portsrepo.RepositoryProvider
	tx     *pgsql.TxManager
	tenant string
}

func TestPgsqlRepositoriesTestSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(PgsqlRepositoriesTestSuite))
}

func (s *PgsqlRepositoriesTestSuite) SetupSuite() {
	s.ctx = context.Background()
	pool, err := pgxpool.New(s.ctx, os.Getenv("TEST_DATABASE_URL"))
	s.Require().NoError(err)
	s.pool = pool

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "000001_create_ledger_tables.up.sql"))
	s.Require().NoError(err)
	_, err = pool.Exec(s.ctx, string(schema))
	s.Require().NoError(err)

	s.repos = pgsql.NewRepositoryProvider(pool)
	s.tx = pgsql.NewTxManager(pool)
}

func (s *PgsqlRepositoriesTestSuite) TearDownSuite() {
	s.pool.Close()
}

func (s *PgsqlRepositoriesTestSuite) SetupTest() {
	// A fresh tenant per test keeps runs independent without truncating.
	s.tenant = "tenant-" + uuid.NewString()
}

func (s *PgsqlRepositoriesTestSuite) newAccount(code string, t domain.AccountType) domain.Account {
	now := time.Now().UTC().Truncate(time.Microsecond)
	acc := domain.Account{
		AccountID:      uuid.NewString(),
		TenantID:       s.tenant,
		Code:           code,
		Name:           "Account " + code,
		AccountType:    t,
		OpeningBalance: decimal.Zero,
		IsActive:       true,
		AuditFields:    domain.AuditFields{CreatedAt: now, CreatedBy: "test", LastUpdatedAt: now, LastUpdatedBy: "test"},
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, acc))
	return acc
}

func (s *PgsqlRepositoriesTestSuite) saveEntry(repos portsrepo.RepositoryProvider, number string, on time.Time, debitID, creditID string, value string) domain.JournalEntry {
	amount := decimal.RequireFromString(value)
	now := time.Now().UTC()
	entry := domain.JournalEntry{
		JournalEntryID: uuid.NewString(),
		TenantID:       s.tenant,
		EntryNumber:    number,
		EntryDate:      on,
		EntryType:      domain.EntryPayment,
		Status:         domain.Draft,
		Description:    "Fee payment",
		TotalDebit:     amount,
		TotalCredit:    amount,
		AuditFields:    domain.AuditFields{CreatedAt: now, CreatedBy: "test", LastUpdatedAt: now, LastUpdatedBy: "test"},
	}
	lines := []domain.JournalEntryLine{
		{LineID: uuid.NewString(), JournalEntryID: entry.JournalEntryID, AccountID: debitID, DebitAmount: amount, CreditAmount: decimal.Zero, LineOrder: 1},
		{LineID: uuid.NewString(), JournalEntryID: entry.JournalEntryID, AccountID: creditID, DebitAmount: decimal.Zero, CreditAmount: amount, LineOrder: 2},
	}
	s.Require().NoError(repos.JournalRepo.SaveJournalEntry(s.ctx, entry, lines))
	s.Require().NoError(repos.JournalRepo.MarkJournalEntryPosted(s.ctx, s.tenant, entry.JournalEntryID, "test", now))
	return entry
}

func (s *PgsqlRepositoriesTestSuite) TestAccountCodeIsUniquePerTenant() {
	s.newAccount("1000", domain.Asset)

	dup := domain.Account{AccountID: uuid.NewString(), TenantID: s.tenant, Code: "1000", Name: "Dup", AccountType: domain.Asset, IsActive: true}
	err := s.repos.AccountRepo.SaveAccount(s.ctx, dup)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	found, err := s.repos.AccountRepo.FindAccountByCode(s.ctx, s.tenant, "1000")
	s.Require().NoError(err)
	s.Equal(domain.Asset, found.AccountType)

	_, err = s.repos.AccountRepo.FindAccountByCode(s.ctx, "someone-else", "1000")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgsqlRepositoriesTestSuite) TestSecondaryIndexesExist() {
	rows, err := s.pool.Query(s.ctx, `SELECT indexname FROM pg_indexes WHERE tablename IN ('journal_entries', 'journal_entry_lines')`)
	s.Require().NoError(err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		s.Require().NoError(rows.Scan(&name))
		names = append(names, name)
	}
	s.Require().NoError(rows.Err())

	for _, want := range []string{
		"idx_journal_entries_tenant_date",
		"idx_journal_entries_tenant_status",
		"idx_journal_entries_tenant_type",
		"idx_journal_entry_lines_entry",
		"idx_journal_entry_lines_entry_account",
		"idx_journal_entry_lines_account",
	} {
		s.Contains(names, want)
	}
}

func (s *PgsqlRepositoriesTestSuite) TestMalformedIDsReadAsNotFound() {
	cash := s.newAccount("1000", domain.Asset)

	found, err := s.repos.AccountRepo.FindAccountsByIDs(s.ctx, s.tenant, []string{cash.AccountID, "does-not-exist"})
	s.Require().NoError(err)
	s.Len(found, 1)
	s.Contains(found, cash.AccountID)

	found, err = s.repos.AccountRepo.FindAccountsByIDs(s.ctx, s.tenant, []string{"abc"})
	s.Require().NoError(err)
	s.Empty(found)

	_, err = s.repos.AccountRepo.FindAccountByID(s.ctx, s.tenant, "abc")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.repos.JournalRepo.FindJournalEntryByID(s.ctx, s.tenant, "not-a-uuid")
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.repos.LedgerRepo.ListPostedLinesByAccount(s.ctx, s.tenant, "abc", nil, nil)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PgsqlRepositoriesTestSuite) TestPostedLinesAggregateAndReferencedAccountsCannotBeDeleted() {
	cash := s.newAccount("1000", domain.Asset)
	fees := s.newAccount("4000", domain.Income)

	err := s.tx.WithTransaction(s.ctx, func(repos portsrepo.RepositoryProvider) error {
		s.saveEntry(repos, "JE-2025-0001", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cash.AccountID, fees.AccountID, "5000")
		s.saveEntry(repos, "JE-2025-0002", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC), cash.AccountID, fees.AccountID, "250.50")
		return nil
	})
	s.Require().NoError(err)

	movement, err := s.repos.LedgerRepo.SumPostedByAccount(s.ctx, s.tenant, cash.AccountID, nil, nil)
	s.Require().NoError(err)
	s.True(movement.Debit.Equal(decimal.RequireFromString("5250.50")))

	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	movement, err = s.repos.LedgerRepo.SumPostedByAccount(s.ctx, s.tenant, cash.AccountID, nil, &to)
	s.Require().NoError(err)
	s.True(movement.Debit.Equal(decimal.RequireFromString("5000")))

	lines, err := s.repos.LedgerRepo.ListPostedLinesByAccount(s.ctx, s.tenant, fees.AccountID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)
	s.Equal("JE-2025-0001", lines[0].EntryNumber)

	hasLines, err := s.repos.AccountRepo.AccountHasLines(s.ctx, s.tenant, cash.AccountID)
	s.Require().NoError(err)
	s.True(hasLines)
	s.ErrorIs(s.repos.AccountRepo.DeleteAccount(s.ctx, s.tenant, cash.AccountID), apperrors.ErrConflict)
}

func (s *PgsqlRepositoriesTestSuite) TestStatusTransitionsAreGuarded() {
	cash := s.newAccount("1000", domain.Asset)
	fees := s.newAccount("4000", domain.Income)

	var entry domain.JournalEntry
	s.Require().NoError(s.tx.WithTransaction(s.ctx, func(repos portsrepo.RepositoryProvider) error {
		entry = s.saveEntry(repos, "JE-2025-0001", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cash.AccountID, fees.AccountID, "10")
		return nil
	}))

	err := s.tx.WithTransaction(s.ctx, func(repos portsrepo.RepositoryProvider) error {
		return repos.JournalRepo.MarkJournalEntryPosted(s.ctx, s.tenant, entry.JournalEntryID, "test", time.Now())
	})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	err = s.repos.JournalRepo.SaveJournalEntry(s.ctx, entry, nil)
	s.ErrorIs(err, apperrors.ErrInternal, "writes outside a transaction are refused")
}

func (s *PgsqlRepositoriesTestSuite) TestSequenceSeedsAndStaysUnique() {
	cash := s.newAccount("1000", domain.Asset)
	fees := s.newAccount("4000", domain.Income)
	s.Require().NoError(s.tx.WithTransaction(s.ctx, func(repos portsrepo.RepositoryProvider) error {
		s.saveEntry(repos, "JE-2025-0041", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), cash.AccountID, fees.AccountID, "1")
		return nil
	}))

	const workers = 10
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seqs []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.tx.WithTransaction(context.Background(), func(repos portsrepo.RepositoryProvider) error {
				seq, err := repos.SequenceRepo.NextJournalSequence(context.Background(), s.tenant, 2025, "JE")
				if err != nil {
					return err
				}
				mu.Lock()
				seqs = append(seqs, seq)
				mu.Unlock()
				return nil
			})
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	require.Len(s.T(), seqs, workers)
	for i, seq := range seqs {
		s.Equal(int64(42+i), seq, fmt.Sprintf("position %d", i))
	}
}

func (s *PgsqlRepositoriesTestSuite) TestListJournalEntriesPages() {
	cash := s.newAccount("1000", domain.Asset)
	fees := s.newAccount("4000", domain.Income)
	s.Require().NoError(s.tx.WithTransaction(s.ctx, func(repos portsrepo.RepositoryProvider) error {
		for i := 1; i <= 3; i++ {
			s.saveEntry(repos, fmt.Sprintf("JE-2025-%04d", i), time.Date(2025, 6, i, 0, 0, 0, 0, time.UTC), cash.AccountID, fees.AccountID, "1")
		}
		return nil
	}))

	page, next, err := s.repos.JournalRepo.ListJournalEntries(s.ctx, s.tenant, domain.JournalEntryFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Require().NotNil(next)
	s.Equal("JE-2025-0003", page[0].EntryNumber)

	page, next, err = s.repos.JournalRepo.ListJournalEntries(s.ctx, s.tenant, domain.JournalEntryFilter{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Nil(next)
	s.Equal("JE-2025-0001", page[0].EntryNumber)
}
