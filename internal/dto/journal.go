package dto

import (
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionResponse defines the data returned for a ledger entry.
type TransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	JournalID       string          `json:"journalID"`
	AccountID       string          `json:"accountID"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`         // DEBIT or CREDIT
	SignedAmount    decimal.Decimal `json:"signedAmount"` // Effect on the account balance; set on account listings
	MemberID        string          `json:"memberID,omitempty"`
	GroupID         string          `json:"groupID,omitempty"`
	LoanID          string          `json:"loanID,omitempty"`
	TransactionDate time.Time       `json:"transactionDate"`
	Notes           string          `json:"notes"`
	EventType       string          `json:"eventType,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID   string          `json:"journalID"`
	EventType   string          `json:"eventType"`
	ReferenceID string          `json:"referenceID"`
	GroupID     string          `json:"groupID,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
	CreatedBy   string          `json:"createdBy"`
}

// GetJournalResponse defines the combined response for getting a journal and its transactions.
type GetJournalResponse struct {
	Journal      JournalResponse       `json:"journal"`
	Transactions []TransactionResponse `json:"transactions"`
}

// ListTransactionsParams defines query parameters for listing ledger entries of an account.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of ledger entries.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		JournalID:       txn.JournalID,
		AccountID:       txn.AccountID,
		Amount:          txn.Amount,
		Type:            string(txn.TransactionType),
		MemberID:        txn.MemberID,
		GroupID:         txn.GroupID,
		LoanID:          txn.LoanID,
		TransactionDate: txn.TransactionDate,
		Notes:           txn.Notes,
		EventType:       string(txn.EventType),
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to []TransactionResponse.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	return JournalResponse{
		JournalID:   j.JournalID,
		EventType:   string(j.EventType),
		ReferenceID: j.ReferenceID,
		GroupID:     j.GroupID,
		Date:        j.JournalDate,
		Description: j.Description,
		Amount:      j.Amount,
		CreatedAt:   j.CreatedAt,
		CreatedBy:   j.CreatedBy,
	}
}

// ToGetJournalResponse converts a posting result.
func ToGetJournalResponse(r *domain.PostingResult) GetJournalResponse {
	return GetJournalResponse{
		Journal:      ToJournalResponse(&r.Journal),
		Transactions: ToTransactionResponses(r.Transactions),
	}
}
