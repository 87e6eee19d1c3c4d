package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// ProductSvc manages loan products
type ProductSvc interface {
	CreateProduct(ctx context.Context, req dto.CreateLoanProductRequest, userID string) (*domain.LoanProduct, error)
	GetProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error)
	ListProducts(ctx context.Context) ([]domain.LoanProduct, error)
}
