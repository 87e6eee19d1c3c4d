package pgsql

import (
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Transactor:    newPgxTransactionManager(dbPool),
		AccountRepo:   newPgxAccountRepository(dbPool),
		JournalRepo:   newPgxJournalRepository(dbPool),
		ReportingRepo: newReportingRepository(dbPool),
		LoanRepo:      newPgxLoanRepository(dbPool),
		CapitalRepo:   newPgxCapitalRepository(dbPool),
		GroupRepo:     newPgxGroupRepository(dbPool),
		ProductRepo:   newPgxProductRepository(dbPool),
	}
}

var _ portsrepo.TransactionManager = (*PgxTransactionManager)(nil)
