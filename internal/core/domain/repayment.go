package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RepaymentPriority selects how a payment is split between interest and principal.
type RepaymentPriority string

const (
	PriorityInterest             RepaymentPriority = "interest"
	PriorityPrincipal            RepaymentPriority = "principal"
	PriorityInterestAndPrincipal RepaymentPriority = "interest+principal"
)

// Valid reports whether p is a known priority.
func (p RepaymentPriority) Valid() bool {
	switch p {
	case PriorityInterest, PriorityPrincipal, PriorityInterestAndPrincipal:
		return true
	}
	return false
}

// Outstanding is what a member still owes on a loan.
type Outstanding struct {
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Charges   decimal.Decimal `json:"charges"`
}

// Total returns principal + interest + charges.
func (o Outstanding) Total() decimal.Decimal {
	return o.Principal.Add(o.Interest).Add(o.Charges)
}

// Allocation is the result of splitting a payment across outstanding balances.
type Allocation struct {
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	ChargesPaid   decimal.Decimal `json:"chargesPaid"`
	Unallocated   decimal.Decimal `json:"unallocated"` // Excess beyond total outstanding, not posted
}

// Allocated is the part of the payment applied to the loan.
func (a Allocation) Allocated() decimal.Decimal {
	return a.PrincipalPaid.Add(a.InterestPaid).Add(a.ChargesPaid)
}

// LoanRepayment is an append-only record of a payment against a loan.
type LoanRepayment struct {
	RepaymentID   string          `json:"repaymentID"`
	LoanID        string          `json:"loanID"`
	MemberID      string          `json:"memberID"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	RepaymentDate time.Time       `json:"repaymentDate"`
	Allocation
	JournalID string `json:"journalID"`
	AuditFields
}

// RepaymentReceived is published to the notification collaborator after a repayment commits.
type RepaymentReceived struct {
	RepaymentID   string          `json:"repaymentID"`
	LoanID        string          `json:"loanID"`
	MemberID      string          `json:"memberID"`
	GroupID       string          `json:"groupID"`
	Amount        decimal.Decimal `json:"amount"`
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	ChargesPaid   decimal.Decimal `json:"chargesPaid"`
	LoanStatus    LoanStatus      `json:"loanStatus"`
	RepaymentDate time.Time       `json:"repaymentDate"`
}
