package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_fee_ledger/internal/core/services"
	"github.com/SscSPs/school_fee_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	ledgerFixture
	cash *domain.Account
	fees *domain.Account
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.setUpLedger()
	s.cash = s.createAccount(tenantID, "1001", domain.Asset, "")
	s.fees = s.createAccount(tenantID, "4001", domain.Income, "")
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_PostsBalancedEntry() {
	entry := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "5000"), credit(s.fees.AccountID, "5000"))

	s.Equal(domain.Posted, entry.Status)
	s.Equal("JE-2025-0001", entry.EntryNumber)
	s.True(entry.TotalDebit.Equal(amount("5000")))
	s.True(entry.TotalCredit.Equal(entry.TotalDebit))
	s.Require().NotNil(entry.PostedByID)
	s.Equal(actorID, *entry.PostedByID)
	s.Equal(fixedNow, *entry.PostedAt)
	s.Require().Len(entry.Lines, 2)
	s.Equal("1001", entry.Lines[0].AccountCode)
	s.Equal("4001", entry.Lines[1].AccountCode)

	stored, err := s.ledger.GetJournalEntry(s.ctx, tenantID, entry.JournalEntryID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, stored.Status)
	s.Len(stored.Lines, 2)

	s.publisher.AssertCalled(s.T(), "PublishJournalEvent", mock.Anything, mock.MatchedBy(func(e domain.JournalEvent) bool {
		return e.EventType == domain.EventJournalPosted && e.JournalEntryID == entry.JournalEntryID
	}))
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_RoundsAndToleratesPenny() {
	entry := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "100.004"), credit(s.fees.AccountID, "99.995"))

	s.Equal("100.00", entry.TotalDebit.StringFixed(2))
	s.Equal("100.00", entry.TotalCredit.StringFixed(2))
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_ValidationFailures() {
	foreign := s.createAccount(otherTenantID, "1001", domain.Asset, "")

	tests := []struct {
		name    string
		lines   []dto.JournalLineRequest
		wantErr error
	}{
		{
			name:    "single line",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "10")},
			wantErr: apperrors.ErrInsufficientLines,
		},
		{
			name:    "unbalanced",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "9.98")},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name: "double sided line",
			lines: []dto.JournalLineRequest{
				{AccountID: s.cash.AccountID, DebitAmount: amount("10"), CreditAmount: amount("10")},
				{AccountID: s.fees.AccountID, DebitAmount: decimal.Zero, CreditAmount: decimal.Zero},
			},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "negative amount",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "-10"), debit(s.fees.AccountID, "-10"), credit(s.fees.AccountID, "-20")},
			wantErr: apperrors.ErrInvalidLine,
		},
		{
			name:    "raw totals differ by more than a cent",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "100.0149"), credit(s.fees.AccountID, "99.995")},
			wantErr: apperrors.ErrUnbalanced,
		},
		{
			name:    "sub-cent amount",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "100.005"), credit(s.fees.AccountID, "100")},
			wantErr: apperrors.ErrAmountPrecision,
		},
		{
			name:    "foreign account",
			lines:   []dto.JournalLineRequest{debit(foreign.AccountID, "10"), credit(s.fees.AccountID, "10")},
			wantErr: apperrors.ErrUnknownAccount,
		},
		{
			name:    "missing account",
			lines:   []dto.JournalLineRequest{debit("does-not-exist", "10"), credit(s.fees.AccountID, "10")},
			wantErr: apperrors.ErrUnknownAccount,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.ledger.CreateJournalEntry(s.ctx, tenantID, entryRequest(date(2025, 6, 1), tt.lines...), actorID)
			s.ErrorIs(err, tt.wantErr)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}

	entries, _, err := s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{})
	s.Require().NoError(err)
	s.Empty(entries, "failed creations must not persist anything")

	// No sequence number was consumed.
	entry := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "1"), credit(s.fees.AccountID, "1"))
	s.Equal("JE-2025-0001", entry.EntryNumber)
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_RejectsInactiveAccount() {
	inactive := false
	_, err := s.accounts.UpdateAccount(s.ctx, tenantID, s.fees.AccountID, dto.UpdateAccountRequest{IsActive: &inactive}, actorID)
	s.Require().NoError(err)

	_, err = s.ledger.CreateJournalEntry(s.ctx, tenantID,
		entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10")), actorID)
	s.ErrorIs(err, apperrors.ErrInactiveAccount)
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_RequiresHeaderFields() {
	req := entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	req.Description = "  "
	_, err := s.ledger.CreateJournalEntry(s.ctx, tenantID, req, actorID)
	s.ErrorIs(err, apperrors.ErrValidation)

	req = entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	req.EntryType = domain.JournalEntryType("GIFT")
	_, err = s.ledger.CreateJournalEntry(s.ctx, tenantID, req, actorID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_ConcurrentNumbersAreUnique() {
	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := s.ledger.CreateJournalEntry(context.Background(), tenantID,
				entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10")), actorID)
			if !assert.NoError(s.T(), err) {
				return
			}
			mu.Lock()
			numbers = append(numbers, entry.EntryNumber)
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Require().Len(numbers, workers)
	sort.Strings(numbers)
	for i, n := range numbers {
		s.Equal(fmt.Sprintf("JE-2025-%04d", i+1), n)
	}
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_TenantsHaveIndependentSequences() {
	otherCash := s.createAccount(otherTenantID, "1001", domain.Asset, "")
	otherFees := s.createAccount(otherTenantID, "4001", domain.Income, "")

	s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))

	entry, err := s.ledger.CreateJournalEntry(s.ctx, otherTenantID,
		entryRequest(date(2025, 6, 1), debit(otherCash.AccountID, "10"), credit(otherFees.AccountID, "10")), actorID)
	s.Require().NoError(err)
	s.Equal("JE-2025-0001", entry.EntryNumber)
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_EndToEnd() {
	original := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "5000"), credit(s.fees.AccountID, "5000"))

	cashBalance, err := s.balances.GetAccountBalance(s.ctx, tenantID, s.cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(cashBalance.Balance.Equal(amount("5000")))
	feeBalance, err := s.balances.GetAccountBalance(s.ctx, tenantID, s.fees.AccountID, nil)
	s.Require().NoError(err)
	s.True(feeBalance.Balance.Equal(amount("5000")))

	reversal, err := s.ledger.ReverseJournalEntry(s.ctx, tenantID, original.JournalEntryID, actorID, nil)
	s.Require().NoError(err)

	s.Equal(domain.Posted, reversal.Status)
	s.Equal("JE-2025-0002", reversal.EntryNumber)
	s.Equal("Reversal of JE-2025-0001", reversal.Description)
	s.Equal(original.EntryType, reversal.EntryType)
	s.Require().NotNil(reversal.Reference)
	s.Equal(original.EntryNumber, *reversal.Reference)
	s.Equal(original.JournalEntryID, *reversal.ReferenceID)
	s.Equal(original.JournalEntryID, *reversal.ReversalOfEntryID)

	s.Require().Len(reversal.Lines, 2)
	s.Equal(s.cash.AccountID, reversal.Lines[0].AccountID)
	s.True(reversal.Lines[0].CreditAmount.Equal(amount("5000")))
	s.True(reversal.Lines[0].DebitAmount.IsZero())
	s.Equal(s.fees.AccountID, reversal.Lines[1].AccountID)
	s.True(reversal.Lines[1].DebitAmount.Equal(amount("5000")))
	s.Contains(reversal.Lines[0].Description, "Reversal:")

	stored, err := s.ledger.GetJournalEntry(s.ctx, tenantID, original.JournalEntryID)
	s.Require().NoError(err)
	s.Equal(domain.Reversed, stored.Status)
	s.Require().NotNil(stored.ReversedEntryID)
	s.Equal(reversal.JournalEntryID, *stored.ReversedEntryID)
	s.Equal(actorID, *stored.ReversedByID)
	s.True(stored.TotalDebit.Equal(amount("5000")), "original totals are untouched")

	cashBalance, err = s.balances.GetAccountBalance(s.ctx, tenantID, s.cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(cashBalance.Balance.IsZero(), "cash back to zero, got %s", cashBalance.Balance)
	feeBalance, err = s.balances.GetAccountBalance(s.ctx, tenantID, s.fees.AccountID, nil)
	s.Require().NoError(err)
	s.True(feeBalance.Balance.IsZero(), "fees back to zero, got %s", feeBalance.Balance)

	_, err = s.ledger.ReverseJournalEntry(s.ctx, tenantID, original.JournalEntryID, actorID, nil)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
	_, err = s.ledger.ReverseJournalEntry(s.ctx, tenantID, reversal.JournalEntryID, actorID, nil)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	s.publisher.AssertCalled(s.T(), "PublishJournalEvent", mock.Anything, mock.MatchedBy(func(e domain.JournalEvent) bool {
		return e.EventType == domain.EventJournalReversed && e.JournalEntryID == original.JournalEntryID
	}))
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_UsesReason() {
	original := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	reason := "Cheque bounced"

	reversal, err := s.ledger.ReverseJournalEntry(s.ctx, tenantID, original.JournalEntryID, actorID, &reason)
	s.Require().NoError(err)
	s.Equal(reason, reversal.Description)
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_AllowsDeactivatedAccounts() {
	original := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	outcome, err := s.accounts.DeactivateOrDeleteAccount(s.ctx, tenantID, s.fees.AccountID, actorID)
	s.Require().NoError(err)
	s.Equal(domain.RemovalDeactivate, outcome)

	_, err = s.ledger.ReverseJournalEntry(s.ctx, tenantID, original.JournalEntryID, actorID, nil)
	s.NoError(err)
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_ConcurrentCallsReverseOnce() {
	original := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ledger.ReverseJournalEntry(context.Background(), tenantID, original.JournalEntryID, actorID, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(s.T(), err, apperrors.ErrInvalidTransition)
		}()
	}
	wg.Wait()
	s.Equal(1, succeeded)
}

func (s *JournalServiceTestSuite) TestReverseJournalEntry_NotFound() {
	_, err := s.ledger.ReverseJournalEntry(s.ctx, tenantID, "missing", actorID, nil)
	s.ErrorIs(err, apperrors.ErrNotFound)

	original := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	_, err = s.ledger.ReverseJournalEntry(s.ctx, otherTenantID, original.JournalEntryID, actorID, nil)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_RejectsPostedEntry() {
	entry := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))

	_, err := s.ledger.PostJournalEntry(s.ctx, tenantID, entry.JournalEntryID, actorID)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.ledger.PostJournalEntry(s.ctx, tenantID, "missing", actorID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_PostsDraft() {
	draft := domain.JournalEntry{
		JournalEntryID: "draft-1",
		TenantID:       tenantID,
		EntryNumber:    "JE-2025-0900",
		EntryDate:      date(2025, 6, 2),
		EntryType:      domain.EntryAdjustment,
		Status:         domain.Draft,
		Description:    "Imported draft",
		TotalDebit:     amount("25"),
		TotalCredit:    amount("25"),
	}
	err := s.store.WithTransaction(s.ctx, func(tx portsrepo.RepositoryProvider) error {
		return tx.JournalRepo.SaveJournalEntry(s.ctx, draft, []domain.JournalEntryLine{
			{LineID: "d1", JournalEntryID: "draft-1", AccountID: s.cash.AccountID, DebitAmount: amount("25"), CreditAmount: decimal.Zero, LineOrder: 1},
			{LineID: "d2", JournalEntryID: "draft-1", AccountID: s.fees.AccountID, DebitAmount: decimal.Zero, CreditAmount: amount("25"), LineOrder: 2},
		})
	})
	s.Require().NoError(err)

	before, err := s.balances.GetAccountBalance(s.ctx, tenantID, s.cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(before.Balance.IsZero(), "drafts do not count")

	posted, err := s.ledger.PostJournalEntry(s.ctx, tenantID, "draft-1", actorID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)

	after, err := s.balances.GetAccountBalance(s.ctx, tenantID, s.cash.AccountID, nil)
	s.Require().NoError(err)
	s.True(after.Balance.Equal(amount("25")))

	// The next allocated number continues after the imported one.
	entry := s.post(date(2025, 6, 3), debit(s.cash.AccountID, "1"), credit(s.fees.AccountID, "1"))
	s.Equal("JE-2025-0901", entry.EntryNumber)
}

func (s *JournalServiceTestSuite) TestPostJournalEntry_RejectsUnbalancedDraft() {
	draft := domain.JournalEntry{
		JournalEntryID: "draft-2", TenantID: tenantID, EntryNumber: "JE-2025-0950",
		EntryDate: date(2025, 6, 2), EntryType: domain.EntryAdjustment, Status: domain.Draft,
		TotalDebit: amount("25"), TotalCredit: amount("20"),
	}
	err := s.store.WithTransaction(s.ctx, func(tx portsrepo.RepositoryProvider) error {
		return tx.JournalRepo.SaveJournalEntry(s.ctx, draft, []domain.JournalEntryLine{
			{LineID: "u1", JournalEntryID: "draft-2", AccountID: s.cash.AccountID, DebitAmount: amount("25"), CreditAmount: decimal.Zero},
			{LineID: "u2", JournalEntryID: "draft-2", AccountID: s.fees.AccountID, DebitAmount: decimal.Zero, CreditAmount: amount("20")},
		})
	})
	s.Require().NoError(err)

	_, err = s.ledger.PostJournalEntry(s.ctx, tenantID, "draft-2", actorID)
	s.ErrorIs(err, apperrors.ErrUnbalanced)
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_PublishFailureDoesNotFail() {
	publisher := new(MockPublisher)
	publisher.On("PublishJournalEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	ledger := services.NewJournalService(s.repos, s.store, services.WithEventPublisher(publisher), services.WithJournalClock(fixedClock))

	entry, err := ledger.CreateJournalEntry(s.ctx, tenantID,
		entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10")), actorID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, entry.Status)
	publisher.AssertNumberOfCalls(s.T(), "PublishJournalEvent", 1)
}

func (s *JournalServiceTestSuite) TestCreateJournalEntry_StorageFailureRollsBack() {
	failing := &failingTxManager{inner: s.store, err: errors.New("disk full")}
	ledger := services.NewJournalService(s.repos, failing, services.WithJournalClock(fixedClock))

	_, err := ledger.CreateJournalEntry(s.ctx, tenantID,
		entryRequest(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10")), actorID)
	s.Require().Error(err)
	s.NotErrorIs(err, apperrors.ErrValidation)

	hasLines, err := s.repos.AccountRepo.AccountHasLines(s.ctx, tenantID, s.cash.AccountID)
	s.Require().NoError(err)
	s.False(hasLines)

	entry := s.post(date(2025, 6, 1), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	s.Equal("JE-2025-0001", entry.EntryNumber)
}

func (s *JournalServiceTestSuite) TestListJournalEntries_FiltersAndPages() {
	for day := 1; day <= 5; day++ {
		s.post(date(2025, 6, day), debit(s.cash.AccountID, "10"), credit(s.fees.AccountID, "10"))
	}
	refund := entryRequest(date(2025, 6, 6), debit(s.fees.AccountID, "5"), credit(s.cash.AccountID, "5"))
	refund.EntryType = domain.EntryRefund
	_, err := s.ledger.CreateJournalEntry(s.ctx, tenantID, refund, actorID)
	s.Require().NoError(err)

	page1, next, err := s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{Limit: 4})
	s.Require().NoError(err)
	s.Require().Len(page1, 4)
	s.Require().NotNil(next)
	s.Equal(date(2025, 6, 6), page1[0].EntryDate)

	page2, next, err := s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{Limit: 4, NextToken: next})
	s.Require().NoError(err)
	s.Len(page2, 2)
	s.Nil(next)

	refundType := domain.EntryRefund
	refunds, _, err := s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{EntryType: &refundType})
	s.Require().NoError(err)
	s.Len(refunds, 1)

	from, to := date(2025, 6, 2), date(2025, 6, 3)
	window, _, err := s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{From: &from, To: &to})
	s.Require().NoError(err)
	s.Len(window, 2)

	bad := "%%%"
	_, _, err = s.ledger.ListJournalEntries(s.ctx, tenantID, domain.JournalEntryFilter{NextToken: &bad})
	s.ErrorIs(err, apperrors.ErrValidation)
}

// failingTxManager runs the real transaction but swaps in a journal repository
// whose writes fail.
type failingTxManager struct {
	inner portsrepo.TransactionManager
	err   error
}

func (f *failingTxManager) WithTransaction(ctx context.Context, fn func(repos portsrepo.RepositoryProvider) error) error {
	return f.inner.WithTransaction(ctx, func(repos portsrepo.RepositoryProvider) error {
		repos.JournalRepo = &failingJournalRepo{JournalRepositoryFacade: repos.JournalRepo, err: f.err}
		return fn(repos)
	})
}

type failingJournalRepo struct {
	portsrepo.JournalRepositoryFacade
	err error
}

func (r *failingJournalRepo) MarkJournalEntryPosted(context.Context, string, string, string, time.Time) error {
	return r.err
}
