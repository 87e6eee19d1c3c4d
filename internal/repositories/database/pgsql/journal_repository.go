package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/sacco_ledger/internal/models"
	"github.com/SscSPs/sacco_ledger/internal/utils/mapping"
	"github.com/SscSPs/sacco_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal and transaction data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const journalSelectQuery = `
	SELECT journal_id, event_type, reference_id, group_id, journal_date, description, amount, status,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM journals
`

const transactionSelectQuery = `
	SELECT t.transaction_id, t.journal_id, t.account_id, t.amount, t.transaction_type,
	       t.member_id, t.group_id, t.loan_id, t.transaction_date, t.notes,
	       t.created_at, t.created_by, t.last_updated_at, t.last_updated_by, j.event_type
	FROM transactions t
	JOIN journals j ON t.journal_id = j.journal_id
`

// SaveJournal inserts the journal header and its entries. When ctx carries no transaction
// one is opened here so the journal is never persisted without all of its entries.
func (r *PgxJournalRepository) SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction) error {
	if _, ok := txFromContext(ctx); !ok {
		tx, err := r.Begin(ctx)
		if err != nil {
			return err
		}
		// Will be ignored if transaction is committed successfully
		defer r.Rollback(ctx, tx)
		if err := r.SaveJournal(context.WithValue(ctx, txCtxKey{}, tx), journal, transactions); err != nil {
			return err
		}
		return r.Commit(ctx, tx)
	}

	db := r.DB(ctx)
	modelJournal := mapping.ToModelJournal(journal)

	// 1. Insert the Journal entry. The (event_type, reference_id) constraint makes this idempotent per business record.
	journalQuery := `
		INSERT INTO journals (
			journal_id, event_type, reference_id, group_id, journal_date, description, amount, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := db.Exec(ctx, journalQuery,
		modelJournal.JournalID,
		modelJournal.EventType,
		modelJournal.ReferenceID,
		modelJournal.GroupID,
		modelJournal.JournalDate,
		modelJournal.Description,
		modelJournal.Amount,
		modelJournal.Status,
		modelJournal.CreatedAt,
		modelJournal.CreatedBy,
		modelJournal.LastUpdatedAt,
		modelJournal.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, fmt.Sprintf("post %s journal for reference %s", modelJournal.EventType, modelJournal.ReferenceID))
	}

	// 2. Insert the entries in one batch
	batch := &pgx.Batch{}
	txnQuery := `
		INSERT INTO transactions (
			transaction_id, journal_id, account_id, amount, transaction_type, member_id, group_id, loan_id,
			transaction_date, notes, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	for _, txn := range transactions {
		m := mapping.ToModelTransaction(txn)
		batch.Queue(txnQuery,
			m.TransactionID,
			m.JournalID,
			m.AccountID,
			m.Amount,
			m.TransactionType,
			m.MemberID,
			m.GroupID,
			m.LoanID,
			m.TransactionDate,
			m.Notes,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := db.SendBatch(ctx, batch)
	// Important: Close the batch results to check for errors in each command
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute transaction batch for journal "+modelJournal.JournalID, err)
	}
	return nil
}

func scanJournal(row pgx.Row) (models.Journal, error) {
	var m models.Journal
	err := row.Scan(
		&m.JournalID,
		&m.EventType,
		&m.ReferenceID,
		&m.GroupID,
		&m.JournalDate,
		&m.Description,
		&m.Amount,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxJournalRepository) findJournal(ctx context.Context, filter string, args ...any) (*domain.Journal, error) {
	m, err := scanJournal(r.DB(ctx).QueryRow(ctx, journalSelectQuery+filter, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find journal", err)
	}
	domainJournal := mapping.ToDomainJournal(m)
	return &domainJournal, nil
}

// FindJournalByID retrieves a journal by its ID.
func (r *PgxJournalRepository) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	return r.findJournal(ctx, "WHERE journal_id = $1", journalID)
}

// FindJournalByReference retrieves the journal posted for a business record.
func (r *PgxJournalRepository) FindJournalByReference(ctx context.Context, eventType domain.EventType, referenceID string) (*domain.Journal, error) {
	return r.findJournal(ctx, "WHERE event_type = $1 AND reference_id = $2", string(eventType), referenceID)
}

func scanTransactions(rows pgx.Rows) ([]models.Transaction, error) {
	defer rows.Close()
	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.TransactionID,
			&t.JournalID,
			&t.AccountID,
			&t.Amount,
			&t.TransactionType,
			&t.MemberID,
			&t.GroupID,
			&t.LoanID,
			&t.TransactionDate,
			&t.Notes,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
			&t.EventType,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// FindTransactionsByJournalID retrieves all transactions associated with a specific journal.
func (r *PgxJournalRepository) FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error) {
	rows, err := r.DB(ctx).Query(ctx, transactionSelectQuery+"WHERE t.journal_id = $1 ORDER BY t.transaction_type DESC, t.transaction_id", journalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query transactions for journal "+journalID, err)
	}
	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan transaction rows for journal "+journalID, err)
	}
	return mapping.ToDomainTransactionSlice(transactions), nil
}

// ListTransactionsByAccountID retrieves a paginated list of transactions for a specific account using token-based pagination.
// It returns the transactions, a token for the next page, and an error.
func (r *PgxJournalRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	query := transactionSelectQuery + "WHERE t.account_id = $1"
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		cursor, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		// Tuple comparison is concise and efficient in Postgres
		query += " AND (t.transaction_date, t.created_at, t.transaction_id) < ($2, $3, $4)"
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
	}
	// Ordering is crucial and must be stable
	query += " ORDER BY t.transaction_date DESC, t.created_at DESC, t.transaction_id DESC LIMIT $" + strconv.Itoa(len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for account "+accountID, err)
	}
	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan transaction rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		// The token points to the last item included in this page
		last := transactions[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.TransactionDate, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		nextTokenVal = &token
		transactions = transactions[:limit]
	}

	return mapping.ToDomainTransactionSlice(transactions), nextTokenVal, nil
}
