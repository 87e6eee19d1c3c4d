package accounting

import (
	"fmt"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FlatRateInterest returns principal × rate × duration / 100 rounded to cents,
// where rate is a monthly percentage and duration is in months.
func FlatRateInterest(principal, ratePercent decimal.Decimal, duration int) decimal.Decimal {
	return RoundMoney(principal.Mul(ratePercent).Mul(decimal.NewFromInt(int64(duration))).Div(hundred))
}

// GenerateFlatRateSchedule splits principal and interest evenly over duration monthly installments.
// Every installment but the last gets the per-period share rounded to cents; the last one absorbs the
// remainder so scheduled principal and interest sum exactly to the loan totals.
func GenerateFlatRateSchedule(loanID string, principal, interest decimal.Decimal, duration int, start time.Time) ([]domain.Installment, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", apperrors.ErrValidation)
	}
	if !principal.IsPositive() {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if interest.IsNegative() {
		return nil, fmt.Errorf("%w: interest cannot be negative", apperrors.ErrValidation)
	}

	n := decimal.NewFromInt(int64(duration))
	principalShare := evenShare(principal, n)
	interestShare := evenShare(interest, n)

	remaining := principal.Add(interest)
	installments := make([]domain.Installment, 0, duration)
	for k := 1; k <= duration; k++ {
		p, i := principalShare, interestShare
		if k == duration {
			prior := decimal.NewFromInt(int64(duration - 1))
			p = principal.Sub(principalShare.Mul(prior))
			i = interest.Sub(interestShare.Mul(prior))
		}
		total := p.Add(i)
		remaining = remaining.Sub(total)

		installments = append(installments, domain.Installment{
			InstallmentID:     uuid.NewString(),
			LoanID:            loanID,
			InstallmentNumber: k,
			DueDate:           start.AddDate(0, k, 0),
			PrincipalDue:      p,
			InterestDue:       i,
			TotalDue:          total,
			BalanceAfter:      remaining,
			Status:            domain.InstallmentPending,
		})
	}
	return installments, nil
}

// evenShare rounds amount/n to cents, falling back to truncation when rounding up
// would leave the final installment negative.
func evenShare(amount, n decimal.Decimal) decimal.Decimal {
	share := RoundMoney(amount.Div(n))
	if share.Mul(n.Sub(decimal.NewFromInt(1))).GreaterThan(amount) {
		share = amount.Div(n).Truncate(2)
	}
	return share
}
