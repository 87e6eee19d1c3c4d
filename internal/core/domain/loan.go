package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanPendingApproval LoanStatus = "PENDING_APPROVAL"
	LoanApproved        LoanStatus = "APPROVED"
	LoanRejected        LoanStatus = "REJECTED"
	LoanDisbursed       LoanStatus = "DISBURSED"
	LoanActive          LoanStatus = "ACTIVE"
	LoanMatured         LoanStatus = "MATURED"
	LoanClosed          LoanStatus = "CLOSED"
)

var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanPendingApproval: {LoanApproved, LoanRejected},
	LoanApproved:        {LoanDisbursed},
	LoanDisbursed:       {LoanActive, LoanMatured, LoanClosed},
	LoanActive:          {LoanMatured, LoanClosed},
	LoanMatured:         {LoanClosed},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	for _, allowed := range loanTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AcceptsRepayments reports whether repayments may be recorded in this state.
func (s LoanStatus) AcceptsRepayments() bool {
	return s == LoanDisbursed || s == LoanActive || s == LoanMatured
}

// Loan is a member's loan. Principal is the approved amount; Applied is what the member asked for.
type Loan struct {
	LoanID                string          `json:"loanID"`
	MemberID              string          `json:"memberID"`
	GroupID               string          `json:"groupID"`
	ProductID             string          `json:"productID"`
	AppliedAmount         decimal.Decimal `json:"appliedAmount"`
	PrincipalAmount       decimal.Decimal `json:"principalAmount"`
	InterestRate          decimal.Decimal `json:"interestRate"` // Percent per month
	Duration              int             `json:"duration"`     // Months
	InterestAmount        decimal.Decimal `json:"interestAmount"`
	RepaymentAmount       decimal.Decimal `json:"repaymentAmount"`
	ChargesAmount         decimal.Decimal `json:"chargesAmount"`
	Status                LoanStatus      `json:"status"`
	ApplicationDate       time.Time       `json:"applicationDate"`
	ApprovedBy            *string         `json:"approvedBy,omitempty"`
	ApprovedAt            *time.Time      `json:"approvedAt,omitempty"`
	RejectedBy            *string         `json:"rejectedBy,omitempty"`
	RejectedAt            *time.Time      `json:"rejectedAt,omitempty"`
	RejectionReason       string          `json:"rejectionReason,omitempty"`
	DisbursedAt           *time.Time      `json:"disbursedAt,omitempty"`
	DisbursementJournalID *string         `json:"disbursementJournalID,omitempty"`
	AuditFields
}

// TransitionTo moves the loan to next, failing with ErrInvalidLoanState when the move is not allowed.
func (l *Loan) TransitionTo(next LoanStatus) error {
	if !l.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: loan %s cannot move from %s to %s", apperrors.ErrInvalidLoanState, l.LoanID, l.Status, next)
	}
	l.Status = next
	return nil
}
