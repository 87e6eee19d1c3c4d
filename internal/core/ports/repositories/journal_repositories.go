package repositories

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// FindJournalByReference finds the journal posted for a business record.
	FindJournalByReference(ctx context.Context, eventType domain.EventType, referenceID string) (*domain.Journal, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// SaveJournal persists a journal and all of its entries atomically.
	// Returns apperrors.ErrDuplicate if the (event type, reference) pair was already posted.
	SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction) error
}

// TransactionReader defines read operations for ledger entries
type TransactionReader interface {
	// FindTransactionsByJournalID retrieves all transactions associated with a single journal ID.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions for a specific account using token-based pagination.
	// It returns the transactions, a token for the next page, and an error.
	ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	TransactionReader
}
