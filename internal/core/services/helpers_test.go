package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_fee_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_fee_ledger/internal/core/services"
	"github.com/SscSPs/school_fee_ledger/internal/dto"
	"github.com/SscSPs/school_fee_ledger/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	tenantID      = "tenant-1"
	otherTenantID = "tenant-2"
	actorID       = "user-1"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// MockPublisher records published journal events.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJournalEvent(ctx context.Context, event domain.JournalEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ledgerFixture wires every service to one in-memory store.
type ledgerFixture struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	repos     portsrepo.RepositoryProvider
	accounts  portssvc.AccountSvcFacade
	ledger    portssvc.LedgerSvcFacade
	balances  portssvc.BalanceSvc
	reports   portssvc.ReportingService
	publisher *MockPublisher
}

func (f *ledgerFixture) setUpLedger() {
	f.ctx = context.Background()
	f.store = memory.New()
	f.repos = f.store.Repositories()
	f.publisher = new(MockPublisher)
	f.publisher.On("PublishJournalEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.accounts = services.NewAccountServiceImpl(f.repos.AccountRepo, services.WithAccountClock(fixedClock))
	f.ledger = services.NewJournalService(f.repos, f.store,
		services.WithJournalClock(fixedClock),
		services.WithEventPublisher(f.publisher),
	)
	f.balances = services.NewBalanceService(f.repos.AccountRepo, f.repos.LedgerRepo)
	f.reports = services.NewReportingService(f.repos.AccountRepo, f.repos.LedgerRepo)
}

func (f *ledgerFixture) createAccount(tenant, code string, accountType domain.AccountType, opening string) *domain.Account {
	req := dto.CreateAccountRequest{Code: code, Name: "Account " + code, AccountType: accountType}
	if opening != "" {
		o := amount(opening)
		req.OpeningBalance = &o
	}
	acc, err := f.accounts.CreateAccount(f.ctx, tenant, req, actorID)
	require.NoError(f.T(), err)
	return acc
}

func debit(accountID, value string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, DebitAmount: amount(value), CreditAmount: decimal.Zero}
}

func credit(accountID, value string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, DebitAmount: decimal.Zero, CreditAmount: amount(value)}
}

func entryRequest(on time.Time, lines ...dto.JournalLineRequest) dto.CreateJournalEntryRequest {
	return dto.CreateJournalEntryRequest{
		EntryDate:   dto.NewDate(on),
		EntryType:   domain.EntryPayment,
		Description: "Fee payment",
		Lines:       lines,
	}
}

func (f *ledgerFixture) post(on time.Time, lines ...dto.JournalLineRequest) *domain.JournalEntry {
	entry, err := f.ledger.CreateJournalEntry(f.ctx, tenantID, entryRequest(on, lines...), actorID)
	require.NoError(f.T(), err)
	return entry
}
