package accounting

import (
	"fmt"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a transaction amount based on account type and transaction type.
func CalculateSignedAmount(txn domain.Transaction, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := txn.Amount
	isDebit := txn.TransactionType == domain.Debit

	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, txn.AccountID)
	}
	return signedAmount, nil
}

// SumByDirection returns the debit and credit totals of a set of entries.
func SumByDirection(transactions []domain.Transaction) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, txn := range transactions {
		if txn.TransactionType == domain.Debit {
			debits = debits.Add(txn.Amount)
		} else {
			credits = credits.Add(txn.Amount)
		}
	}
	return debits, credits
}

// ValidateJournalBalance checks that a journal has at least two valid entries and that
// debits equal credits exactly. An imbalance is reported as ErrLedgerImbalance.
func ValidateJournalBalance(transactions []domain.Transaction) error {
	if len(transactions) < 2 {
		return fmt.Errorf("%w: journal must have at least two transaction entries", apperrors.ErrLedgerImbalance)
	}

	for _, txn := range transactions {
		if err := txn.Validate(); err != nil {
			return fmt.Errorf("%w: transaction %s: %v", apperrors.ErrValidation, txn.TransactionID, err)
		}
	}

	debits, credits := SumByDirection(transactions)
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s != credits %s", apperrors.ErrLedgerImbalance, debits.String(), credits.String())
	}
	return nil
}

// RoundMoney rounds to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
