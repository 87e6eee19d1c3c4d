package dto

import (
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LoanChargeRequest is a charge attached to a new product.
type LoanChargeRequest struct {
	Name       string            `json:"name" binding:"required"`
	ChargeType domain.ChargeType `json:"chargeType" binding:"required,oneof=FIXED PERCENTAGE"`
	Value      decimal.Decimal   `json:"value" binding:"required,gt=0"`
}

// CreateLoanProductRequest defines the data needed to create a loan product.
type CreateLoanProductRequest struct {
	Name         string              `json:"name" binding:"required"`
	InterestRate decimal.Decimal     `json:"interestRate" binding:"gte=0"`
	MaxDuration  int                 `json:"maxDuration" binding:"required,min=1"`
	Charges      []LoanChargeRequest `json:"charges" binding:"dive"`
}

// LoanProductResponse defines the data returned for a loan product.
type LoanProductResponse struct {
	ProductID    string              `json:"productID"`
	Name         string              `json:"name"`
	InterestRate decimal.Decimal     `json:"interestRate"`
	MaxDuration  int                 `json:"maxDuration"`
	Charges      []domain.LoanCharge `json:"charges"`
	IsActive     bool                `json:"isActive"`
}

// ToLoanProductResponse converts a domain.LoanProduct.
func ToLoanProductResponse(p *domain.LoanProduct) LoanProductResponse {
	charges := p.Charges
	if charges == nil {
		charges = []domain.LoanCharge{}
	}
	return LoanProductResponse{
		ProductID:    p.ProductID,
		Name:         p.Name,
		InterestRate: p.InterestRate,
		MaxDuration:  p.MaxDuration,
		Charges:      charges,
		IsActive:     p.IsActive,
	}
}

// ToLoanProductResponses converts a slice of products.
func ToLoanProductResponses(products []domain.LoanProduct) []LoanProductResponse {
	res := make([]LoanProductResponse, len(products))
	for i := range products {
		res[i] = ToLoanProductResponse(&products[i])
	}
	return res
}
