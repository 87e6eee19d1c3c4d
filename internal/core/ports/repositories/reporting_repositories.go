package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// ReportingRepository aggregates the ledger. Nothing here takes locks.
type ReportingRepository interface {
	// GetAccountTotals sums debits and credits of an account up to and including asOf.
	GetAccountTotals(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountTotals, error)

	// GetScopeAccountTotals returns the totals of every active account owned by scope.
	GetScopeAccountTotals(ctx context.Context, scope domain.AccountScope, asOf time.Time) ([]domain.AccountTotals, error)

	// GetGroupShareOfProductAccounts sums the entries a group posted to product-scoped accounts up to asOf.
	// Only accounts the group touched are returned. Opening balances are not included.
	GetGroupShareOfProductAccounts(ctx context.Context, groupID string, asOf time.Time) ([]domain.AccountTotals, error)

	// GetLoanRoleTotals sums the entries tagged with loanID, keyed by the role of the account they hit.
	// Opening balances are not included.
	GetLoanRoleTotals(ctx context.Context, loanID string) (map[domain.AccountRole]domain.AccountTotals, error)

	// GetMemberRoleTotals sums the entries tagged with memberID on accounts of the given role.
	GetMemberRoleTotals(ctx context.Context, memberID string, role domain.AccountRole) (*domain.AccountTotals, error)
}
