package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction represents a single immutable ledger entry within a Journal, affecting one account.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	JournalID       string          `json:"journalID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`          // Always positive
	TransactionType TransactionType `json:"transactionType"` // DEBIT or CREDIT
	MemberID        string          `json:"memberID,omitempty"`
	GroupID         string          `json:"groupID,omitempty"`
	LoanID          string          `json:"loanID,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Notes           string          `json:"notes"`
	AuditFields

	// Populated on reads joined with the journal
	EventType EventType `json:"eventType,omitempty"`
}

// Validate checks the entry can be written to the ledger.
func (t *Transaction) Validate() error {
	if t.AccountID == "" {
		return errors.New("account ID is required")
	}
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if t.TransactionType != Debit && t.TransactionType != Credit {
		return errors.New("transaction type must be DEBIT or CREDIT")
	}
	return nil
}
