package services

import "github.com/SscSPs/sacco_ledger/internal/core/domain"

// legScope says which owner a template leg's role is resolved against.
type legScope int

const (
	// legGroup resolves against the event's group.
	legGroup legScope = iota
	// legOrganization resolves against the organization.
	legOrganization
	// legLoan resolves against the loan product's mapping first, then the group.
	legLoan
)

// postingLeg is one line of a posting template.
type postingLeg struct {
	Role   domain.AccountRole
	Side   domain.TransactionType
	Amount domain.AmountKey
	Scope  legScope
	Notes  string
}

// postingTemplates lists the legs each event type posts. Legs whose amount is zero are skipped.
var postingTemplates = map[domain.EventType][]postingLeg{
	domain.EventLoanDisbursement: {
		{domain.RoleLoansReceivable, domain.Debit, domain.AmountPrincipal, legLoan, "Loan principal"},
		{domain.RoleBank, domain.Credit, domain.AmountNetDisbursement, legGroup, "Net disbursement"},
		{domain.RoleLoanChargesIncome, domain.Credit, domain.AmountDeductedCharges, legLoan, "Charges deducted at issuance"},
		{domain.RoleLoanChargesReceivable, domain.Debit, domain.AmountBilledCharges, legLoan, "Charges billed at issuance"},
		{domain.RoleLoanChargesIncome, domain.Credit, domain.AmountBilledCharges, legLoan, "Charges billed at issuance"},
		{domain.RoleInterestReceivable, domain.Debit, domain.AmountInterest, legLoan, "Interest recognized"},
		{domain.RoleInterestIncome, domain.Credit, domain.AmountInterest, legLoan, "Interest recognized"},
	},
	domain.EventLoanRepayment: {
		{domain.RoleBank, domain.Debit, domain.AmountRepaymentTotal, legGroup, "Repayment received"},
		{domain.RoleLoanChargesReceivable, domain.Credit, domain.AmountChargesPaid, legLoan, "Charges repaid"},
		{domain.RoleInterestReceivable, domain.Credit, domain.AmountInterestPaid, legLoan, "Interest repaid"},
		{domain.RoleLoansReceivable, domain.Credit, domain.AmountPrincipalPaid, legLoan, "Principal repaid"},
	},
	domain.EventFeeAccrual: {
		{domain.RoleLoanChargesReceivable, domain.Debit, domain.AmountCharge, legLoan, "Charge accrued"},
		{domain.RoleLoanChargesIncome, domain.Credit, domain.AmountCharge, legLoan, "Charge accrued"},
	},
	domain.EventSavingsDeposit: {
		{domain.RoleBank, domain.Debit, domain.AmountSavings, legGroup, "Savings deposit"},
		{domain.RoleSavingsLiability, domain.Credit, domain.AmountSavings, legGroup, "Savings deposit"},
	},
	domain.EventSavingsWithdrawal: {
		{domain.RoleSavingsLiability, domain.Debit, domain.AmountSavings, legGroup, "Savings withdrawal"},
		{domain.RoleBank, domain.Credit, domain.AmountSavings, legGroup, "Savings withdrawal"},
	},
	domain.EventCapitalAdvance: {
		{domain.RoleBank, domain.Debit, domain.AmountTransfer, legGroup, "Capital received from organization"},
		{domain.RoleCapitalPayable, domain.Credit, domain.AmountTransfer, legGroup, "Capital received from organization"},
		{domain.RoleCapitalReceivable, domain.Debit, domain.AmountTransfer, legOrganization, "Capital advanced to group"},
		{domain.RoleBank, domain.Credit, domain.AmountTransfer, legOrganization, "Capital advanced to group"},
	},
	domain.EventCapitalReturn: {
		{domain.RoleCapitalPayable, domain.Debit, domain.AmountTransfer, legGroup, "Capital returned to organization"},
		{domain.RoleBank, domain.Credit, domain.AmountTransfer, legGroup, "Capital returned to organization"},
		{domain.RoleBank, domain.Debit, domain.AmountTransfer, legOrganization, "Capital returned by group"},
		{domain.RoleCapitalReceivable, domain.Credit, domain.AmountTransfer, legOrganization, "Capital returned by group"},
	},
}
