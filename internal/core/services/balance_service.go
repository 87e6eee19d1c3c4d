package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/utils/accounting"
)

// balanceService derives every balance from the ledger entries.
type balanceService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	loanRepo      portsrepo.LoanReader
	groupRepo     portsrepo.GroupReader
}

// NewBalanceService creates a new balance service.
func NewBalanceService(reportingRepo portsrepo.ReportingRepository, loanRepo portsrepo.LoanReader, groupRepo portsrepo.GroupReader) portssvc.BalanceSvc {
	return &balanceService{
		reportingRepo: reportingRepo,
		loanRepo:      loanRepo,
		groupRepo:     groupRepo,
	}
}

var _ portssvc.BalanceSvc = (*balanceService)(nil)

func (s *balanceService) AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*domain.AccountBalance, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	totals, err := s.reportingRepo.GetAccountTotals(ctx, accountID, asOf)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account totals", slog.String("account_id", accountID))
		}
		return nil, err
	}
	balance := toAccountBalance(*totals, asOf)
	return &balance, nil
}

func (s *balanceService) GroupFinancialSummary(ctx context.Context, groupID string, asOf time.Time) (*domain.GroupFinancialSummary, error) {
	if _, err := s.groupRepo.FindGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	totals, err := s.reportingRepo.GetScopeAccountTotals(ctx, domain.GroupScope(groupID), asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get group account totals", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to summarize group %s: %w", groupID, err)
	}
	// Loan legs may land on product-mapped accounts; the group's share of those belongs in its summary.
	productTotals, err := s.reportingRepo.GetGroupShareOfProductAccounts(ctx, groupID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to get product account totals", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to summarize group %s: %w", groupID, err)
	}
	totals = append(totals, productTotals...)

	summary := &domain.GroupFinancialSummary{
		GroupID:          groupID,
		AsOf:             asOf,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalRevenue:     decimal.Zero,
		TotalExpenses:    decimal.Zero,
		Accounts:         make([]domain.AccountBalance, 0, len(totals)),
	}
	for _, t := range totals {
		balance := toAccountBalance(t, asOf)
		summary.Accounts = append(summary.Accounts, balance)
		switch t.AccountType {
		case domain.Asset:
			summary.TotalAssets = summary.TotalAssets.Add(balance.Balance)
		case domain.Liability:
			summary.TotalLiabilities = summary.TotalLiabilities.Add(balance.Balance)
		case domain.Revenue:
			summary.TotalRevenue = summary.TotalRevenue.Add(balance.Balance)
		case domain.Expense:
			summary.TotalExpenses = summary.TotalExpenses.Add(balance.Balance)
		}
	}
	summary.NetIncome = summary.TotalRevenue.Sub(summary.TotalExpenses)
	summary.EquityBalance = summary.TotalAssets.Sub(summary.TotalLiabilities)
	return summary, nil
}

// LoanOutstanding is what the ledger says is still owed on the loan's receivables.
func (s *balanceService) LoanOutstanding(ctx context.Context, loanID string) (*domain.Outstanding, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, err
	}
	outstanding, err := loanOutstanding(ctx, s.reportingRepo, loanID)
	if err != nil {
		s.LogError(ctx, err, "Failed to derive loan outstanding", slog.String("loan_id", loanID))
		return nil, err
	}
	return outstanding, nil
}

func (s *balanceService) MemberSavingsBalance(ctx context.Context, memberID string) (decimal.Decimal, error) {
	if _, err := s.groupRepo.FindMemberByID(ctx, memberID); err != nil {
		return decimal.Zero, err
	}
	return memberSavings(ctx, s.reportingRepo, memberID)
}

func toAccountBalance(t domain.AccountTotals, asOf time.Time) domain.AccountBalance {
	return domain.AccountBalance{
		AccountID:   t.AccountID,
		Code:        t.Code,
		Name:        t.Name,
		Role:        t.Role,
		AccountType: t.AccountType,
		Balance:     t.Balance(),
		AsOf:        asOf,
	}
}

// loanOutstanding reads the receivable balances tagged with the loan. Shared with the loan service,
// which calls it with a transaction-carrying context.
func loanOutstanding(ctx context.Context, repo portsrepo.ReportingRepository, loanID string) (*domain.Outstanding, error) {
	totals, err := repo.GetLoanRoleTotals(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger totals for loan %s: %w", loanID, err)
	}
	receivable := func(role domain.AccountRole) decimal.Decimal {
		t, ok := totals[role]
		if !ok {
			return decimal.Zero
		}
		return accounting.NonNegative(t.Debits.Sub(t.Credits))
	}
	return &domain.Outstanding{
		Principal: receivable(domain.RoleLoansReceivable),
		Interest:  receivable(domain.RoleInterestReceivable),
		Charges:   receivable(domain.RoleLoanChargesReceivable),
	}, nil
}

func memberSavings(ctx context.Context, repo portsrepo.ReportingRepository, memberID string) (decimal.Decimal, error) {
	totals, err := repo.GetMemberRoleTotals(ctx, memberID, domain.RoleSavingsLiability)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get savings totals for member %s: %w", memberID, err)
	}
	return totals.Credits.Sub(totals.Debits), nil
}
