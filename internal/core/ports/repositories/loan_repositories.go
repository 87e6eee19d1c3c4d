package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// LoanReader defines read operations for loans, schedules and repayments
type LoanReader interface {
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListLoansByGroup returns loans newest first using token-based pagination.
	ListLoansByGroup(ctx context.Context, groupID string, status *domain.LoanStatus, limit int, nextToken *string) ([]domain.Loan, *string, error)

	FindInstallmentsByLoanID(ctx context.Context, loanID string) ([]domain.Installment, error)
	FindRepaymentsByLoanID(ctx context.Context, loanID string) ([]domain.LoanRepayment, error)
}

// LoanWriter defines write operations for loans
type LoanWriter interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	UpdateLoan(ctx context.Context, loan domain.Loan) error

	// ReplaceSchedule deletes the loan's installments and inserts the new set.
	// Callers run it inside a transaction so the swap is atomic.
	ReplaceSchedule(ctx context.Context, loanID string, installments []domain.Installment) error

	SaveRepayment(ctx context.Context, repayment domain.LoanRepayment) error
}

// LoanTransactionSupport defines row locking for loan mutations
type LoanTransactionSupport interface {
	// FindLoanByIDForUpdate reads the loan with SELECT ... FOR UPDATE in the transaction carried by ctx.
	FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error)
}

// LoanMaintenance holds the idempotent batch updates run by the scheduler
type LoanMaintenance interface {
	// MarkOverdueInstallments flags pending installments of live loans due before asOf.
	MarkOverdueInstallments(ctx context.Context, asOf time.Time) (int64, error)

	// MarkMaturedLoans moves live loans whose final installment fell due before asOf to MATURED.
	MarkMaturedLoans(ctx context.Context, asOf time.Time, userID string) (int64, error)
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	LoanTransactionSupport
	LoanMaintenance
}
