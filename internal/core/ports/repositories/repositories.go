package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Outside a transaction it is backed by the connection pool; inside
// TransactionManager.WithTransaction every field is bound to the transaction.
type RepositoryProvider struct {
	AccountRepo  AccountRepositoryFacade
	JournalRepo  JournalRepositoryFacade
	LedgerRepo   LedgerQueryRepository
	SequenceRepo SequenceRepository
}
