package accounting

import (
	"fmt"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocateRepayment splits amount across the outstanding balances of a loan.
//
// Outstanding charges are settled first. The remainder goes to interest and principal
// according to priority:
//   - interest: interest first, then principal
//   - principal: principal first, then interest
//   - interest+principal: proportional to each outstanding balance, interest rounded to
//     cents and the rounding remainder assigned to principal
//
// Nothing is allocated beyond an outstanding balance; the excess is returned as Unallocated.
func AllocateRepayment(outstanding domain.Outstanding, amount decimal.Decimal, priority domain.RepaymentPriority) (domain.Allocation, error) {
	if !amount.IsPositive() {
		return domain.Allocation{}, fmt.Errorf("%w: payment amount must be greater than zero, got %s", apperrors.ErrInvalidPaymentAmount, amount.String())
	}

	principal := NonNegative(outstanding.Principal)
	interest := NonNegative(outstanding.Interest)
	charges := NonNegative(outstanding.Charges)
	if principal.Add(interest).Add(charges).IsZero() {
		return domain.Allocation{}, apperrors.ErrLoanAlreadySettled
	}

	alloc := domain.Allocation{}
	remaining := amount

	alloc.ChargesPaid = MinDecimal(remaining, charges)
	remaining = remaining.Sub(alloc.ChargesPaid)

	switch priority {
	case domain.PriorityInterest:
		alloc.InterestPaid = MinDecimal(remaining, interest)
		remaining = remaining.Sub(alloc.InterestPaid)
		alloc.PrincipalPaid = MinDecimal(remaining, principal)
		remaining = remaining.Sub(alloc.PrincipalPaid)

	case domain.PriorityPrincipal:
		alloc.PrincipalPaid = MinDecimal(remaining, principal)
		remaining = remaining.Sub(alloc.PrincipalPaid)
		alloc.InterestPaid = MinDecimal(remaining, interest)
		remaining = remaining.Sub(alloc.InterestPaid)

	case domain.PriorityInterestAndPrincipal:
		total := principal.Add(interest)
		if total.IsPositive() {
			pay := MinDecimal(remaining, total)
			interestPaid := MinDecimal(RoundMoney(pay.Mul(interest).Div(total)), interest)
			principalPaid := pay.Sub(interestPaid)
			if principalPaid.GreaterThan(principal) {
				principalPaid = principal
				interestPaid = MinDecimal(pay.Sub(principalPaid), interest)
			}
			alloc.InterestPaid = interestPaid
			alloc.PrincipalPaid = principalPaid
			remaining = remaining.Sub(interestPaid).Sub(principalPaid)
		}

	default:
		return domain.Allocation{}, fmt.Errorf("%w: unknown repayment priority %q", apperrors.ErrValidation, priority)
	}

	alloc.Unallocated = remaining
	return alloc, nil
}
