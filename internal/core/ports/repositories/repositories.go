package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	Transactor    TransactionManager
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalRepositoryFacade
	ReportingRepo ReportingRepository
	LoanRepo      LoanRepositoryFacade
	CapitalRepo   CapitalTransferRepository
	GroupRepo     GroupRepositoryFacade
	ProductRepo   LoanProductRepository
}
