package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
)

// fundsGuard checks an account can cover an outflow while holding its row lock,
// so two concurrent outflows cannot both pass against the same balance.
type fundsGuard struct {
	accountRepo   portsrepo.AccountTransactionSupport
	reportingRepo portsrepo.ReportingRepository
}

// require locks accountID in the transaction carried by ctx and fails with a FundsError of kind
// when its ledger balance is below amount.
func (g fundsGuard) require(ctx context.Context, kind error, accountID string, amount decimal.Decimal, asOf time.Time) error {
	if _, err := g.accountRepo.LockAccounts(ctx, []string{accountID}); err != nil {
		return fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	totals, err := g.reportingRepo.GetAccountTotals(ctx, accountID, asOf)
	if err != nil {
		return fmt.Errorf("failed to read balance of account %s: %w", accountID, err)
	}
	available := totals.Balance()
	if available.LessThan(amount) {
		return apperrors.NewFundsError(kind, accountID, available, amount)
	}
	return nil
}
