package repositories

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// LoanProductRepository persists loan products and their charges.
type LoanProductRepository interface {
	SaveProduct(ctx context.Context, product domain.LoanProduct) error
	FindProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error)
	ListProducts(ctx context.Context) ([]domain.LoanProduct, error)
}
