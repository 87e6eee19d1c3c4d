package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// accountTotalsQuery aggregates posted entries per account. $1 is asOf; callers append the account filter.
const accountTotalsQuery = `
	SELECT
		a.account_id,
		a.code,
		a.name,
		a.role,
		a.account_type,
		a.opening_balance,
		COALESCE(SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount END), 0) AS total_debit,
		COALESCE(SUM(CASE WHEN t.transaction_type = 'CREDIT' THEN t.amount END), 0) AS total_credit
	FROM accounts a
	LEFT JOIN transactions t ON t.account_id = a.account_id AND t.transaction_date <= $1
`

func scanAccountTotals(row pgx.Row) (domain.AccountTotals, error) {
	var totals domain.AccountTotals
	var role, accountType string
	err := row.Scan(
		&totals.AccountID,
		&totals.Code,
		&totals.Name,
		&role,
		&accountType,
		&totals.OpeningBalance,
		&totals.Debits,
		&totals.Credits,
	)
	totals.Role = domain.AccountRole(role)
	totals.AccountType = domain.AccountType(accountType)
	return totals, err
}

// GetAccountTotals sums one account's entries up to and including asOf.
func (r *reportingRepository) GetAccountTotals(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountTotals, error) {
	query := accountTotalsQuery + `
		WHERE a.account_id = $2
		GROUP BY a.account_id, a.code, a.name, a.role, a.account_type, a.opening_balance
	`
	totals, err := scanAccountTotals(r.DB(ctx).QueryRow(ctx, query, asOf, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error querying account totals: %w", err)
	}
	return &totals, nil
}

// GetScopeAccountTotals returns totals for every active account of a scope.
func (r *reportingRepository) GetScopeAccountTotals(ctx context.Context, scope domain.AccountScope, asOf time.Time) ([]domain.AccountTotals, error) {
	query := accountTotalsQuery + `
		WHERE a.scope_kind = $2 AND a.scope_id = $3 AND a.is_active
		GROUP BY a.account_id, a.code, a.name, a.role, a.account_type, a.opening_balance
		ORDER BY a.code
	`
	rows, err := r.DB(ctx).Query(ctx, query, asOf, string(scope.Kind), scope.ID)
	if err != nil {
		return nil, fmt.Errorf("error querying scope account totals: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountTotals{}
	for rows.Next() {
		totals, err := scanAccountTotals(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning scope account totals: %w", err)
		}
		result = append(result, totals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scope account totals: %w", err)
	}
	return result, nil
}

// GetGroupShareOfProductAccounts sums a group's entries on product-scoped accounts.
func (r *reportingRepository) GetGroupShareOfProductAccounts(ctx context.Context, groupID string, asOf time.Time) ([]domain.AccountTotals, error) {
	query := `
		SELECT
			a.account_id,
			a.code,
			a.name,
			a.role,
			a.account_type,
			0::numeric AS opening_balance,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'CREDIT' THEN t.amount END), 0) AS total_credit
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE a.scope_kind = $1 AND t.group_id = $2 AND t.transaction_date <= $3
		GROUP BY a.account_id, a.code, a.name, a.role, a.account_type
		ORDER BY a.code
	`
	rows, err := r.DB(ctx).Query(ctx, query, string(domain.ScopeProduct), groupID, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying product account totals: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountTotals{}
	for rows.Next() {
		totals, err := scanAccountTotals(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product account totals: %w", err)
		}
		result = append(result, totals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product account totals: %w", err)
	}
	return result, nil
}

// GetLoanRoleTotals sums the loan-tagged entries per account role.
func (r *reportingRepository) GetLoanRoleTotals(ctx context.Context, loanID string) (map[domain.AccountRole]domain.AccountTotals, error) {
	query := `
		SELECT
			a.role,
			a.account_type,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'CREDIT' THEN t.amount END), 0) AS total_credit
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE t.loan_id = $1
		GROUP BY a.role, a.account_type
	`
	rows, err := r.DB(ctx).Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("error querying loan totals: %w", err)
	}
	defer rows.Close()

	result := make(map[domain.AccountRole]domain.AccountTotals)
	for rows.Next() {
		var role, accountType string
		var debits, credits decimal.Decimal
		if err := rows.Scan(&role, &accountType, &debits, &credits); err != nil {
			return nil, fmt.Errorf("error scanning loan totals: %w", err)
		}
		// Product- and group-scoped accounts with the same role are merged
		existing := result[domain.AccountRole(role)]
		existing.Role = domain.AccountRole(role)
		existing.AccountType = domain.AccountType(accountType)
		existing.Debits = existing.Debits.Add(debits)
		existing.Credits = existing.Credits.Add(credits)
		result[existing.Role] = existing
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loan totals: %w", err)
	}
	return result, nil
}

// GetMemberRoleTotals sums a member's entries on accounts of one role.
func (r *reportingRepository) GetMemberRoleTotals(ctx context.Context, memberID string, role domain.AccountRole) (*domain.AccountTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN t.transaction_type = 'DEBIT' THEN t.amount END), 0) AS total_debit,
			COALESCE(SUM(CASE WHEN t.transaction_type = 'CREDIT' THEN t.amount END), 0) AS total_credit,
			COALESCE(MAX(a.account_type), '') AS account_type
		FROM transactions t
		JOIN accounts a ON t.account_id = a.account_id
		WHERE t.member_id = $1 AND a.role = $2
	`
	totals := domain.AccountTotals{Role: role}
	var accountType string
	if err := r.DB(ctx).QueryRow(ctx, query, memberID, string(role)).Scan(&totals.Debits, &totals.Credits, &accountType); err != nil {
		return nil, fmt.Errorf("error querying member totals: %w", err)
	}
	totals.AccountType = domain.AccountType(accountType)
	return &totals, nil
}
