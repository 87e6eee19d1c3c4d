package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type (nature) of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsDebitNormal reports whether debits increase the balance of this account type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// AccountRole is the semantic purpose of an account, used by posting templates.
type AccountRole string

const (
	RoleBank                  AccountRole = "bank"
	RoleCash                  AccountRole = "cash"
	RoleLoansReceivable       AccountRole = "loans_receivable"
	RoleInterestReceivable    AccountRole = "interest_receivable"
	RoleLoanChargesReceivable AccountRole = "loan_charges_receivable"
	RoleCapitalReceivable     AccountRole = "capital_receivable"
	RoleSavingsLiability      AccountRole = "savings_liability"
	RoleCapitalPayable        AccountRole = "capital_payable"
	RoleShareCapital          AccountRole = "share_capital"
	RoleInterestIncome        AccountRole = "interest_income"
	RoleLoanChargesIncome     AccountRole = "loan_charges_income"
	RoleContributionIncome    AccountRole = "contribution_income"
	RoleOperatingExpense      AccountRole = "operating_expense"
)

// ScopeKind is the kind of entity that owns an account.
type ScopeKind string

const (
	ScopeOrganization ScopeKind = "ORGANIZATION"
	ScopeGroup        ScopeKind = "GROUP"
	ScopeProduct      ScopeKind = "PRODUCT"
)

// AccountScope identifies the owner of an account: the organization, a group, or a loan product mapping.
type AccountScope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

func OrganizationScope(id string) AccountScope { return AccountScope{Kind: ScopeOrganization, ID: id} }
func GroupScope(id string) AccountScope        { return AccountScope{Kind: ScopeGroup, ID: id} }
func ProductScope(id string) AccountScope      { return AccountScope{Kind: ScopeProduct, ID: id} }

func (s AccountScope) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}

// IsZero reports whether the scope has no owner set.
func (s AccountScope) IsZero() bool {
	return s.ID == ""
}

// Account represents a ledger account within the core domain.
// Balances are never stored on the account; they are derived from the ledger.
type Account struct {
	AccountID      string          `json:"accountID"`
	Code           string          `json:"code"` // Unique ledger code
	Name           string          `json:"name"`
	Scope          AccountScope    `json:"scope"`
	Role           AccountRole     `json:"role"`
	AccountType    AccountType     `json:"accountType"`
	Description    string          `json:"description"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// AccountTemplate describes one account of a standard provisioning set.
type AccountTemplate struct {
	Role        AccountRole
	Name        string
	AccountType AccountType
	CodeSuffix  string
}

// GroupAccountTemplates is the account set every group receives when it is created.
var GroupAccountTemplates = []AccountTemplate{
	{RoleBank, "Bank", Asset, "1000"},
	{RoleCash, "Cash", Asset, "1010"},
	{RoleLoansReceivable, "Loans Receivable", Asset, "1100"},
	{RoleInterestReceivable, "Interest Receivable", Asset, "1110"},
	{RoleLoanChargesReceivable, "Loan Charges Receivable", Asset, "1120"},
	{RoleSavingsLiability, "Member Savings", Liability, "2000"},
	{RoleCapitalPayable, "Capital Payable to Organization", Liability, "2100"},
	{RoleShareCapital, "Share Capital", Equity, "3000"},
	{RoleInterestIncome, "Interest Income", Revenue, "4000"},
	{RoleLoanChargesIncome, "Loan Charges Income", Revenue, "4010"},
	{RoleContributionIncome, "Contribution Income", Revenue, "4020"},
	{RoleOperatingExpense, "Operating Expenses", Expense, "5000"},
}

// OrganizationAccountTemplates is the account set of the organization itself.
var OrganizationAccountTemplates = []AccountTemplate{
	{RoleBank, "Organization Bank", Asset, "1000"},
	{RoleCash, "Organization Cash", Asset, "1010"},
	{RoleCapitalReceivable, "Capital Advanced to Groups", Asset, "1200"},
	{RoleShareCapital, "Organization Share Capital", Equity, "3000"},
	{RoleOperatingExpense, "Organization Operating Expenses", Expense, "5000"},
}

// AccountCode builds the ledger code for a templated account of the given scope.
func AccountCode(scope AccountScope, suffix string) string {
	id := scope.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%c-%s-%s", scope.Kind[0], id, suffix)
}
