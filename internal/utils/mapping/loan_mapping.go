package mapping

import (
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:                d.LoanID,
		MemberID:              d.MemberID,
		GroupID:               d.GroupID,
		ProductID:             d.ProductID,
		AppliedAmount:         d.AppliedAmount,
		PrincipalAmount:       d.PrincipalAmount,
		InterestRate:          d.InterestRate,
		Duration:              d.Duration,
		InterestAmount:        d.InterestAmount,
		RepaymentAmount:       d.RepaymentAmount,
		ChargesAmount:         d.ChargesAmount,
		Status:                string(d.Status),
		ApplicationDate:       d.ApplicationDate,
		ApprovedBy:            d.ApprovedBy,
		ApprovedAt:            d.ApprovedAt,
		RejectedBy:            d.RejectedBy,
		RejectedAt:            d.RejectedAt,
		RejectionReason:       d.RejectionReason,
		DisbursedAt:           d.DisbursedAt,
		DisbursementJournalID: d.DisbursementJournalID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:                m.LoanID,
		MemberID:              m.MemberID,
		GroupID:               m.GroupID,
		ProductID:             m.ProductID,
		AppliedAmount:         m.AppliedAmount,
		PrincipalAmount:       m.PrincipalAmount,
		InterestRate:          m.InterestRate,
		Duration:              m.Duration,
		InterestAmount:        m.InterestAmount,
		RepaymentAmount:       m.RepaymentAmount,
		ChargesAmount:         m.ChargesAmount,
		Status:                domain.LoanStatus(m.Status),
		ApplicationDate:       m.ApplicationDate,
		ApprovedBy:            m.ApprovedBy,
		ApprovedAt:            m.ApprovedAt,
		RejectedBy:            m.RejectedBy,
		RejectedAt:            m.RejectedAt,
		RejectionReason:       m.RejectionReason,
		DisbursedAt:           m.DisbursedAt,
		DisbursementJournalID: m.DisbursementJournalID,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanSlice converts a slice of model Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}

// ToModelInstallment converts a domain Installment
func ToModelInstallment(d domain.Installment) models.LoanInstallment {
	return models.LoanInstallment{
		InstallmentID:     d.InstallmentID,
		LoanID:            d.LoanID,
		InstallmentNumber: d.InstallmentNumber,
		DueDate:           d.DueDate,
		PrincipalDue:      d.PrincipalDue,
		InterestDue:       d.InterestDue,
		TotalDue:          d.TotalDue,
		BalanceAfter:      d.BalanceAfter,
		Status:            string(d.Status),
	}
}

// ToDomainInstallment converts a model LoanInstallment
func ToDomainInstallment(m models.LoanInstallment) domain.Installment {
	return domain.Installment{
		InstallmentID:     m.InstallmentID,
		LoanID:            m.LoanID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		PrincipalDue:      m.PrincipalDue,
		InterestDue:       m.InterestDue,
		TotalDue:          m.TotalDue,
		BalanceAfter:      m.BalanceAfter,
		Status:            domain.InstallmentStatus(m.Status),
	}
}

// ToModelRepayment converts a domain LoanRepayment
func ToModelRepayment(d domain.LoanRepayment) models.LoanRepayment {
	return models.LoanRepayment{
		RepaymentID:   d.RepaymentID,
		LoanID:        d.LoanID,
		MemberID:      d.MemberID,
		Amount:        d.Amount,
		PaymentMethod: d.PaymentMethod,
		RepaymentDate: d.RepaymentDate,
		PrincipalPaid: d.PrincipalPaid,
		InterestPaid:  d.InterestPaid,
		ChargesPaid:   d.ChargesPaid,
		Unallocated:   d.Unallocated,
		JournalID:     d.JournalID,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRepayment converts a model LoanRepayment
func ToDomainRepayment(m models.LoanRepayment) domain.LoanRepayment {
	return domain.LoanRepayment{
		RepaymentID:   m.RepaymentID,
		LoanID:        m.LoanID,
		MemberID:      m.MemberID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		RepaymentDate: m.RepaymentDate,
		Allocation: domain.Allocation{
			PrincipalPaid: m.PrincipalPaid,
			InterestPaid:  m.InterestPaid,
			ChargesPaid:   m.ChargesPaid,
			Unallocated:   m.Unallocated,
		},
		JournalID:   m.JournalID,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}
