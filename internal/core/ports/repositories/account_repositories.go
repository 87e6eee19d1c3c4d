package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its ledger code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindActiveAccountByScopeAndRole returns the single active account mapped to (scope, role).
	// Returns apperrors.ErrNotFound when no active mapping exists.
	FindActiveAccountByScopeAndRole(ctx context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error)

	// ListAccountsByScope lists every account owned by scope, active or not.
	ListAccountsByScope(ctx context.Context, scope domain.AccountScope) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate when the code or the
	// active (scope, role) mapping is taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SaveAccountsIfMissing inserts the accounts whose active (scope, role) mapping does not exist yet
	// and returns how many were inserted.
	SaveAccountsIfMissing(ctx context.Context, accounts []domain.Account) (int, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountTransactionSupport defines operations that support account transactions
type AccountTransactionSupport interface {
	// LockAccounts selects the accounts FOR UPDATE in the transaction carried by ctx.
	LockAccounts(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
