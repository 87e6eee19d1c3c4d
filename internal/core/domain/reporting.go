package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountTotals are the raw ledger aggregates for one account.
type AccountTotals struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Role           AccountRole     `json:"role"`
	AccountType    AccountType     `json:"accountType"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Debits         decimal.Decimal `json:"debits"`
	Credits        decimal.Decimal `json:"credits"`
}

// Balance applies the account nature: debit-normal accounts grow with debits, the rest with credits.
func (t AccountTotals) Balance() decimal.Decimal {
	if t.AccountType.IsDebitNormal() {
		return t.OpeningBalance.Add(t.Debits).Sub(t.Credits)
	}
	return t.OpeningBalance.Add(t.Credits).Sub(t.Debits)
}

// AccountBalance is an account with its derived balance.
type AccountBalance struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Role        AccountRole     `json:"role"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
	AsOf        time.Time       `json:"asOf"`
}

// GroupFinancialSummary is the group overview derived from the ledger.
type GroupFinancialSummary struct {
	GroupID          string           `json:"groupID"`
	AsOf             time.Time        `json:"asOf"`
	TotalAssets      decimal.Decimal  `json:"totalAssets"`
	TotalLiabilities decimal.Decimal  `json:"totalLiabilities"`
	TotalRevenue     decimal.Decimal  `json:"totalRevenue"`
	TotalExpenses    decimal.Decimal  `json:"totalExpenses"`
	NetIncome        decimal.Decimal  `json:"netIncome"`     // Revenue - expenses
	EquityBalance    decimal.Decimal  `json:"equityBalance"` // Assets - liabilities
	Accounts         []AccountBalance `json:"accounts"`
}
