package services

import (
	"context"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSvc derives balances from the ledger. None of its methods take locks.
type BalanceSvc interface {
	AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error)
	GroupFinancialSummary(ctx context.Context, groupID string, asOf time.Time) (*domain.GroupFinancialSummary, error)
	LoanOutstanding(ctx context.Context, loanID string) (*domain.Outstanding, error)
	MemberSavingsBalance(ctx context.Context, memberID string) (decimal.Decimal, error)
}
