package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the due-state of a schedule row.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

// Installment is one row of a loan's amortization schedule.
type Installment struct {
	InstallmentID     string            `json:"installmentID"`
	LoanID            string            `json:"loanID"`
	InstallmentNumber int               `json:"installmentNumber"`
	DueDate           time.Time         `json:"dueDate"`
	PrincipalDue      decimal.Decimal   `json:"principalDue"`
	InterestDue       decimal.Decimal   `json:"interestDue"`
	TotalDue          decimal.Decimal   `json:"totalDue"`
	BalanceAfter      decimal.Decimal   `json:"balanceAfter"` // Scheduled balance remaining after this installment
	Status            InstallmentStatus `json:"status"`
}

// MaintenanceReport summarizes one run of the daily loan maintenance job.
type MaintenanceReport struct {
	AsOf                time.Time `json:"asOf"`
	OverdueInstallments int64     `json:"overdueInstallments"`
	MaturedLoans        int64     `json:"maturedLoans"`
}
