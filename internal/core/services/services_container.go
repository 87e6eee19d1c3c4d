package services

import (
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.RepaymentNotifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The chart of accounts comes first; every posting resolves through it
	container.ChartOfAccounts = NewChartOfAccountsService(repos.AccountRepo)

	container.Posting = NewPostingService(repos.Transactor, repos.JournalRepo, repos.AccountRepo, container.ChartOfAccounts)
	container.Balance = NewBalanceService(repos.ReportingRepo, repos.LoanRepo, repos.GroupRepo)
	container.Group = NewGroupService(repos.Transactor, repos.GroupRepo, container.ChartOfAccounts)
	container.Product = NewProductService(repos.ProductRepo)

	container.Loan = NewLoanService(
		repos.Transactor,
		repos.LoanRepo,
		repos.ProductRepo,
		repos.GroupRepo,
		repos.AccountRepo,
		repos.ReportingRepo,
		container.ChartOfAccounts,
		container.Posting,
		WithSettlementPolicy(cfg.Settlement.Policy()),
		WithRepaymentNotifier(notifier),
	)

	container.Capital = NewCapitalService(
		repos.Transactor,
		repos.CapitalRepo,
		repos.GroupRepo,
		repos.AccountRepo,
		repos.ReportingRepo,
		container.ChartOfAccounts,
		container.Posting,
		cfg.OrganizationID,
	)

	container.Savings = NewSavingsService(
		repos.Transactor,
		repos.GroupRepo,
		repos.AccountRepo,
		repos.ReportingRepo,
		container.ChartOfAccounts,
		container.Posting,
	)

	container.Maintenance = NewMaintenanceService(repos.Transactor, repos.LoanRepo)

	return container
}
