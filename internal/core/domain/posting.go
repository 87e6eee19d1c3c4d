package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType is a business event that produces a ledger journal.
type EventType string

const (
	EventLoanDisbursement  EventType = "LOAN_DISBURSEMENT"
	EventLoanRepayment     EventType = "LOAN_REPAYMENT"
	EventCapitalAdvance    EventType = "CAPITAL_ADVANCE"
	EventCapitalReturn     EventType = "CAPITAL_RETURN"
	EventFeeAccrual        EventType = "FEE_ACCRUAL"
	EventSavingsDeposit    EventType = "SAVINGS_DEPOSIT"
	EventSavingsWithdrawal EventType = "SAVINGS_WITHDRAWAL"
)

// AmountKey names one of the amounts carried by a PostingEvent.
type AmountKey string

const (
	AmountPrincipal       AmountKey = "principal"
	AmountNetDisbursement AmountKey = "net_disbursement"
	AmountDeductedCharges AmountKey = "deducted_charges"
	AmountBilledCharges   AmountKey = "billed_charges"
	AmountInterest        AmountKey = "interest"
	AmountRepaymentTotal  AmountKey = "repayment_total"
	AmountPrincipalPaid   AmountKey = "principal_paid"
	AmountInterestPaid    AmountKey = "interest_paid"
	AmountChargesPaid     AmountKey = "charges_paid"
	AmountTransfer        AmountKey = "transfer"
	AmountCharge          AmountKey = "charge"
	AmountSavings         AmountKey = "savings"
)

// PostingEvent is the input of the posting engine. Scope identifiers are used to
// resolve template roles; the amounts are looked up by key.
type PostingEvent struct {
	EventType      EventType
	ReferenceID    string
	OrganizationID string
	GroupID        string
	ProductID      string
	MemberID       string
	LoanID         string
	Date           time.Time
	Description    string
	Amounts        map[AmountKey]decimal.Decimal
	UserID         string
}

// Amount returns the amount stored under key, or zero.
func (e PostingEvent) Amount(key AmountKey) decimal.Decimal {
	if e.Amounts == nil {
		return decimal.Zero
	}
	return e.Amounts[key]
}

// PostingResult is a journal together with the entries written for it.
type PostingResult struct {
	Journal      Journal       `json:"journal"`
	Transactions []Transaction `json:"transactions"`
}
