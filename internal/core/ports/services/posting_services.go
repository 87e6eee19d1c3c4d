package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// PostingSvc turns business events into balanced journals
type PostingSvc interface {
	// Post resolves every leg of the event's template and persists the journal atomically.
	// It joins the transaction carried by ctx when there is one.
	Post(ctx context.Context, event domain.PostingEvent) (*domain.PostingResult, error)

	// GetJournal retrieves a journal with its entries.
	GetJournal(ctx context.Context, journalID string) (*domain.PostingResult, error)

	// ListTransactionsByAccount retrieves a page of ledger entries for an account.
	ListTransactionsByAccount(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
