package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/sacco_ledger/internal/models"
	"github.com/SscSPs/sacco_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, code, name, scope_kind, scope_id, role, account_type, description,
	opening_balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

const insertAccountQuery = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func accountArgs(m models.Account) []any {
	return []any{
		m.AccountID, m.Code, m.Name, m.ScopeKind, m.ScopeID, m.Role, m.AccountType, m.Description,
		m.OpeningBalance, m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// getAccounts runs a filtered select over accounts and maps the rows.
func (r *PgxAccountRepository) getAccounts(ctx context.Context, filterQuery string, args ...any) ([]domain.Account, error) {
	rows, err := r.DB(ctx).Query(ctx, "SELECT "+accountColumns+" FROM accounts "+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect account rows", err)
	}
	return mapping.ToDomainAccountSlice(modelAccounts), nil
}

func (r *PgxAccountRepository) getAccount(ctx context.Context, filterQuery string, args ...any) (*domain.Account, error) {
	accounts, err := r.getAccounts(ctx, filterQuery, args...)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &accounts[0], nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)
	if _, err := r.DB(ctx).Exec(ctx, insertAccountQuery, accountArgs(modelAcc)...); err != nil {
		return mapWriteError(err, fmt.Sprintf("save account %s (%s %s)", modelAcc.Code, account.Scope, modelAcc.Role))
	}
	return nil
}

// SaveAccountsIfMissing inserts the accounts, skipping any whose code or active (scope, role) mapping already exists.
func (r *PgxAccountRepository) SaveAccountsIfMissing(ctx context.Context, accounts []domain.Account) (int, error) {
	if len(accounts) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, acc := range accounts {
		batch.Queue(insertAccountQuery+" ON CONFLICT DO NOTHING", accountArgs(mapping.ToModelAccount(acc))...)
	}

	br := r.DB(ctx).SendBatch(ctx, batch)
	inserted := 0
	for range accounts {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return inserted, apperrors.NewAppError(500, "failed to provision accounts", err)
		}
		inserted += int(tag.RowsAffected())
	}
	// Important: Close the batch results to check for errors in each command
	if err := br.Close(); err != nil {
		return inserted, apperrors.NewAppError(500, "failed to provision accounts", err)
	}
	return inserted, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.getAccount(ctx, "WHERE account_id = $1", accountID)
}

// FindAccountByCode retrieves an account by its ledger code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return r.getAccount(ctx, "WHERE code = $1", code)
}

func (r *PgxAccountRepository) FindActiveAccountByScopeAndRole(ctx context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error) {
	return r.getAccount(ctx, "WHERE scope_kind = $1 AND scope_id = $2 AND role = $3 AND is_active",
		string(scope.Kind), scope.ID, string(role))
}

func (r *PgxAccountRepository) ListAccountsByScope(ctx context.Context, scope domain.AccountScope) ([]domain.Account, error) {
	return r.getAccounts(ctx, "WHERE scope_kind = $1 AND scope_id = $2 ORDER BY code", string(scope.Kind), scope.ID)
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $1 AND is_active;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, accountID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate account "+accountID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindAccountByID(ctx, accountID); errors.Is(findErr, apperrors.ErrNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("%w: account %s is already inactive", apperrors.ErrConflict, accountID)
	}
	return nil
}

// LockAccounts selects the accounts FOR UPDATE. Rows are locked in id order so concurrent
// postings touching the same accounts cannot deadlock each other.
func (r *PgxAccountRepository) LockAccounts(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	tx, err := r.requireTx(ctx, "LockAccounts")
	if err != nil {
		return nil, err
	}

	query := "SELECT " + accountColumns + " FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE"
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock accounts", err)
	}
	modelAccounts, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect locked account rows", err)
	}

	accountsMap := make(map[string]domain.Account, len(modelAccounts))
	for _, m := range modelAccounts {
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}

	var missing []string
	for _, id := range accountIDs {
		if _, found := accountsMap[id]; !found {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}
	return accountsMap, nil
}
