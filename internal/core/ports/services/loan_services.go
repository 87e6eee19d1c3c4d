package services

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LoanReaderSvc defines read operations for loans
type LoanReaderSvc interface {
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoansByGroup(ctx context.Context, groupID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error)
	GetSchedule(ctx context.Context, loanID string) ([]domain.Installment, error)
	ListRepayments(ctx context.Context, loanID string) ([]domain.LoanRepayment, error)
}

// LoanLifecycleSvc moves a loan through its states
type LoanLifecycleSvc interface {
	// ApplyLoan records a pending application priced from the loan product.
	ApplyLoan(ctx context.Context, req dto.ApplyLoanRequest, userID string) (*domain.Loan, error)

	// ApproveLoan approves a pending loan for approvedAmount (at most the applied amount),
	// regenerates its schedule and, when configured, disburses it in the same transaction.
	ApproveLoan(ctx context.Context, loanID string, approvedAmount decimal.Decimal, approverID string) (*domain.Loan, error)

	RejectLoan(ctx context.Context, loanID string, reason string, userID string) (*domain.Loan, error)

	// DisburseLoan posts the disbursement of an approved loan.
	DisburseLoan(ctx context.Context, loanID string, userID string) (*domain.Loan, error)
}

// LoanSettlementSvc records money coming in against a loan
type LoanSettlementSvc interface {
	RecordRepayment(ctx context.Context, loanID string, amount decimal.Decimal, paymentMethod string, repaymentDate time.Time, userID string) (*domain.LoanRepayment, error)

	// AccrueLoanCharge bills a charge for a period. A second accrual for the same period fails with apperrors.ErrDuplicate.
	AccrueLoanCharge(ctx context.Context, loanID string, amount decimal.Decimal, period string, description string, userID string) (*domain.PostingResult, error)
}

// LoanSvcFacade combines all loan-related service interfaces
type LoanSvcFacade interface {
	LoanReaderSvc
	LoanLifecycleSvc
	LoanSettlementSvc
}

// RepaymentNotifier delivers committed repayments to the notification collaborator.
type RepaymentNotifier interface {
	NotifyRepayment(ctx context.Context, event domain.RepaymentReceived) error
}
