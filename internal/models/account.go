package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a row of the chart of accounts.
// There is no balance column; balances are aggregated from transactions.
type Account struct {
	AccountID      string          `db:"account_id"`
	Code           string          `db:"code"`
	Name           string          `db:"name"`
	ScopeKind      string          `db:"scope_kind"`
	ScopeID        string          `db:"scope_id"`
	Role           string          `db:"role"`
	AccountType    AccountType     `db:"account_type"`
	Description    string          `db:"description"`
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	IsActive       bool            `db:"is_active"`
	AuditFields
}
