package dto

import (
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyLoanRequest is a member's loan application.
type ApplyLoanRequest struct {
	MemberID        string          `json:"memberID" binding:"required"`
	ProductID       string          `json:"productID" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Duration        int             `json:"duration" binding:"required,min=1"`
	ApplicationDate *time.Time      `json:"applicationDate"`
}

// ApproveLoanRequest approves a loan, optionally for less than applied.
type ApproveLoanRequest struct {
	ApprovedAmount decimal.Decimal `json:"approvedAmount" binding:"required,gt=0"`
}

// RejectLoanRequest rejects a pending loan.
type RejectLoanRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RecordRepaymentRequest records a payment against a loan.
type RecordRepaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
	RepaymentDate *time.Time      `json:"repaymentDate"`
}

// AccrueChargeRequest bills a charge against a loan for a period, e.g. "2024-05".
type AccrueChargeRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Period      string          `json:"period" binding:"required"`
	Description string          `json:"description"`
}

// ListLoansParams defines query parameters for listing loans of a group.
type ListLoansParams struct {
	Status    *domain.LoanStatus `form:"status"`
	Limit     int                `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string            `form:"nextToken"`
}

// LoanResponse defines the data returned for a loan.
type LoanResponse struct {
	LoanID          string            `json:"loanID"`
	MemberID        string            `json:"memberID"`
	GroupID         string            `json:"groupID"`
	ProductID       string            `json:"productID"`
	AppliedAmount   decimal.Decimal   `json:"appliedAmount"`
	PrincipalAmount decimal.Decimal   `json:"principalAmount"`
	InterestRate    decimal.Decimal   `json:"interestRate"`
	Duration        int               `json:"duration"`
	InterestAmount  decimal.Decimal   `json:"interestAmount"`
	RepaymentAmount decimal.Decimal   `json:"repaymentAmount"`
	ChargesAmount   decimal.Decimal   `json:"chargesAmount"`
	Status          domain.LoanStatus `json:"status"`
	ApplicationDate time.Time         `json:"applicationDate"`
	ApprovedBy      *string           `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time        `json:"approvedAt,omitempty"`
	DisbursedAt     *time.Time        `json:"disbursedAt,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// ListLoansResponse wraps a page of loans.
type ListLoansResponse struct {
	Loans     []LoanResponse `json:"loans"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// InstallmentResponse is one schedule row.
type InstallmentResponse struct {
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	PrincipalDue      decimal.Decimal `json:"principalDue"`
	InterestDue       decimal.Decimal `json:"interestDue"`
	TotalDue          decimal.Decimal `json:"totalDue"`
	BalanceAfter      decimal.Decimal `json:"balanceAfter"`
	Status            string          `json:"status"`
}

// RepaymentResponse is a recorded repayment and how it was allocated.
type RepaymentResponse struct {
	RepaymentID   string          `json:"repaymentID"`
	LoanID        string          `json:"loanID"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	RepaymentDate time.Time       `json:"repaymentDate"`
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	ChargesPaid   decimal.Decimal `json:"chargesPaid"`
	Unallocated   decimal.Decimal `json:"unallocated"`
	JournalID     string          `json:"journalID"`
}

// LoanOutstandingResponse is what is still owed on a loan.
type LoanOutstandingResponse struct {
	LoanID    string          `json:"loanID"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Charges   decimal.Decimal `json:"charges"`
	Total     decimal.Decimal `json:"total"`
}

// ToLoanResponse converts a domain.Loan.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:          l.LoanID,
		MemberID:        l.MemberID,
		GroupID:         l.GroupID,
		ProductID:       l.ProductID,
		AppliedAmount:   l.AppliedAmount,
		PrincipalAmount: l.PrincipalAmount,
		InterestRate:    l.InterestRate,
		Duration:        l.Duration,
		InterestAmount:  l.InterestAmount,
		RepaymentAmount: l.RepaymentAmount,
		ChargesAmount:   l.ChargesAmount,
		Status:          l.Status,
		ApplicationDate: l.ApplicationDate,
		ApprovedBy:      l.ApprovedBy,
		ApprovedAt:      l.ApprovedAt,
		DisbursedAt:     l.DisbursedAt,
		RejectionReason: l.RejectionReason,
	}
}

// ToLoanResponses converts a slice of loans.
func ToLoanResponses(loans []domain.Loan) []LoanResponse {
	res := make([]LoanResponse, len(loans))
	for i := range loans {
		res[i] = ToLoanResponse(&loans[i])
	}
	return res
}

// ToInstallmentResponses converts a schedule.
func ToInstallmentResponses(installments []domain.Installment) []InstallmentResponse {
	res := make([]InstallmentResponse, len(installments))
	for i, inst := range installments {
		res[i] = InstallmentResponse{
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			PrincipalDue:      inst.PrincipalDue,
			InterestDue:       inst.InterestDue,
			TotalDue:          inst.TotalDue,
			BalanceAfter:      inst.BalanceAfter,
			Status:            string(inst.Status),
		}
	}
	return res
}

// ToRepaymentResponse converts a domain.LoanRepayment.
func ToRepaymentResponse(r *domain.LoanRepayment) RepaymentResponse {
	return RepaymentResponse{
		RepaymentID:   r.RepaymentID,
		LoanID:        r.LoanID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		RepaymentDate: r.RepaymentDate,
		PrincipalPaid: r.PrincipalPaid,
		InterestPaid:  r.InterestPaid,
		ChargesPaid:   r.ChargesPaid,
		Unallocated:   r.Unallocated,
		JournalID:     r.JournalID,
	}
}

// ToRepaymentResponses converts a slice of repayments.
func ToRepaymentResponses(repayments []domain.LoanRepayment) []RepaymentResponse {
	res := make([]RepaymentResponse, len(repayments))
	for i := range repayments {
		res[i] = ToRepaymentResponse(&repayments[i])
	}
	return res
}
