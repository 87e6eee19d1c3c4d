package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction represents a single line item within a Journal, affecting one account.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	JournalID       string          `db:"journal_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"` // Positive value
	TransactionType TransactionType `db:"transaction_type"`
	MemberID        *string         `db:"member_id"`
	GroupID         *string         `db:"group_id"`
	LoanID          *string         `db:"loan_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	Notes           string          `db:"notes"`
	AuditFields

	// Populated from the parent journal on reads
	EventType string `db:"event_type"`
}
