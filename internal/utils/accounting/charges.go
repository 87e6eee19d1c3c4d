package accounting

import (
	"fmt"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateLoanCharges totals the product charges for a principal.
func CalculateLoanCharges(charges []domain.LoanCharge, principal decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		switch c.ChargeType {
		case domain.ChargePercentage:
			total = total.Add(principal.Mul(c.Value).Div(hundred))
		default:
			total = total.Add(c.Value)
		}
	}
	return RoundMoney(total)
}

// ScaleCharges scales charges computed on the applied amount by approved/applied.
func ScaleCharges(charges, applied, approved decimal.Decimal) decimal.Decimal {
	if !applied.IsPositive() || approved.Equal(applied) {
		return charges
	}
	return RoundMoney(charges.Mul(approved).Div(applied))
}

// DisbursementAmounts is the breakdown of a loan disbursement posting.
type DisbursementAmounts struct {
	Principal       decimal.Decimal
	NetDisbursement decimal.Decimal // Cash leaving the group bank
	DeductedCharges decimal.Decimal // Withheld from the cash paid out
	BilledCharges   decimal.Decimal // Billed to the member as a receivable
	Interest        decimal.Decimal
}

// ComputeDisbursement applies the charge policy to a loan's totals.
func ComputeDisbursement(principal, charges, interest decimal.Decimal, policy domain.SettlementPolicy) (DisbursementAmounts, error) {
	out := DisbursementAmounts{
		Principal:       principal,
		NetDisbursement: principal,
		DeductedCharges: decimal.Zero,
		BilledCharges:   decimal.Zero,
		Interest:        interest,
	}
	if !policy.ApplyChargesOnIssuance || !charges.IsPositive() {
		return out, nil
	}
	if policy.DeductChargesFromPrincipal {
		if charges.GreaterThanOrEqual(principal) {
			return DisbursementAmounts{}, fmt.Errorf("%w: charges %s consume the whole principal %s", apperrors.ErrValidation, charges.String(), principal.String())
		}
		out.DeductedCharges = charges
		out.NetDisbursement = principal.Sub(charges)
		return out, nil
	}
	out.BilledCharges = charges
	return out, nil
}
