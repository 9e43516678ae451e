package services

import (
	"github.com/SscSPs/school_fee_ledger/internal/core/ports/events"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_fee_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_fee_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// repos serves reads outside a transaction; txManager runs every ledger mutation.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, txManager portsrepo.TransactionManager, publisher events.JournalEventPublisher) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountServiceImpl(repos.AccountRepo)
	container.Ledger = NewJournalService(repos, txManager,
		WithEntryNumberPrefix(cfg.EntryNumberPrefix),
		WithEventPublisher(publisher),
	)
	container.Balance = NewBalanceService(repos.AccountRepo, repos.LedgerRepo)
	container.Reporting = NewReportingService(repos.AccountRepo, repos.LedgerRepo)

	return container
}
