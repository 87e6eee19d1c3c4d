package mapping

import (
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/models"
)

// ToModelJournal converts a domain Journal to a model Journal
func ToModelJournal(d domain.Journal) models.Journal {
	return models.Journal{
		JournalID:   d.JournalID,
		EventType:   string(d.EventType),
		ReferenceID: d.ReferenceID,
		GroupID:     NullableString(d.GroupID),
		JournalDate: d.JournalDate,
		Description: d.Description,
		Amount:      d.Amount,
		Status:      models.JournalStatus(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournal converts a model Journal to a domain Journal
func ToDomainJournal(m models.Journal) domain.Journal {
	return domain.Journal{
		JournalID:   m.JournalID,
		EventType:   domain.EventType(m.EventType),
		ReferenceID: m.ReferenceID,
		GroupID:     StringValue(m.GroupID),
		JournalDate: m.JournalDate,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      domain.JournalStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		JournalID:       d.JournalID,
		AccountID:       d.AccountID,
		Amount:          d.Amount,
		TransactionType: models.TransactionType(d.TransactionType),
		MemberID:        NullableString(d.MemberID),
		GroupID:         NullableString(d.GroupID),
		LoanID:          NullableString(d.LoanID),
		TransactionDate: d.TransactionDate,
		Notes:           d.Notes,
		AuditFields:     ToModelAuditFields(d.AuditFields),
		EventType:       string(d.EventType),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		JournalID:       m.JournalID,
		AccountID:       m.AccountID,
		Amount:          m.Amount,
		TransactionType: domain.TransactionType(m.TransactionType),
		MemberID:        StringValue(m.MemberID),
		GroupID:         StringValue(m.GroupID),
		LoanID:          StringValue(m.LoanID),
		TransactionDate: m.TransactionDate,
		Notes:           m.Notes,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
		EventType:       domain.EventType(m.EventType),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
