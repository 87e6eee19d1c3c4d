package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loan is the loans row.
type Loan struct {
	LoanID                string          `db:"loan_id"`
	MemberID              string          `db:"member_id"`
	GroupID               string          `db:"group_id"`
	ProductID             string          `db:"product_id"`
	AppliedAmount         decimal.Decimal `db:"applied_amount"`
	PrincipalAmount       decimal.Decimal `db:"principal_amount"`
	InterestRate          decimal.Decimal `db:"interest_rate"`
	Duration              int             `db:"duration"`
	InterestAmount        decimal.Decimal `db:"interest_amount"`
	RepaymentAmount       decimal.Decimal `db:"repayment_amount"`
	ChargesAmount         decimal.Decimal `db:"charges_amount"`
	Status                string          `db:"status"`
	ApplicationDate       time.Time       `db:"application_date"`
	ApprovedBy            *string         `db:"approved_by"`
	ApprovedAt            *time.Time      `db:"approved_at"`
	RejectedBy            *string         `db:"rejected_by"`
	RejectedAt            *time.Time      `db:"rejected_at"`
	RejectionReason       string          `db:"rejection_reason"`
	DisbursedAt           *time.Time      `db:"disbursed_at"`
	DisbursementJournalID *string         `db:"disbursement_journal_id"`
	AuditFields
}

// LoanInstallment is one loan_installments row.
type LoanInstallment struct {
	InstallmentID     string          `db:"installment_id"`
	LoanID            string          `db:"loan_id"`
	InstallmentNumber int             `db:"installment_number"`
	DueDate           time.Time       `db:"due_date"`
	PrincipalDue      decimal.Decimal `db:"principal_due"`
	InterestDue       decimal.Decimal `db:"interest_due"`
	TotalDue          decimal.Decimal `db:"total_due"`
	BalanceAfter      decimal.Decimal `db:"balance_after"`
	Status            string          `db:"status"`
}

// LoanRepayment is one loan_repayments row.
type LoanRepayment struct {
	RepaymentID   string          `db:"repayment_id"`
	LoanID        string          `db:"loan_id"`
	MemberID      string          `db:"member_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentMethod string          `db:"payment_method"`
	RepaymentDate time.Time       `db:"repayment_date"`
	PrincipalPaid decimal.Decimal `db:"principal_paid"`
	InterestPaid  decimal.Decimal `db:"interest_paid"`
	ChargesPaid   decimal.Decimal `db:"charges_paid"`
	Unallocated   decimal.Decimal `db:"unallocated"`
	JournalID     string          `db:"journal_id"`
	AuditFields
}
