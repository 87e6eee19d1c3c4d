package domain

import "github.com/shopspring/decimal"

// ChargeType says how a loan charge value is interpreted.
type ChargeType string

const (
	ChargeFixed      ChargeType = "FIXED"
	ChargePercentage ChargeType = "PERCENTAGE" // Percent of the principal
)

// LoanCharge is a fee attached to a loan product.
type LoanCharge struct {
	Name       string          `json:"name"`
	ChargeType ChargeType      `json:"chargeType"`
	Value      decimal.Decimal `json:"value"`
}

// LoanProduct defines the terms loans are issued under.
type LoanProduct struct {
	ProductID    string          `json:"productID"`
	Name         string          `json:"name"`
	InterestRate decimal.Decimal `json:"interestRate"` // Percent per month, flat
	MaxDuration  int             `json:"maxDuration"`  // Months
	Charges      []LoanCharge    `json:"charges"`
	IsActive     bool            `json:"isActive"`
	AuditFields
}
