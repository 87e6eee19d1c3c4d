package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

type productService struct {
	BaseService
	productRepo portsrepo.LoanProductRepository
}

// NewProductService creates a new loan product service.
func NewProductService(productRepo portsrepo.LoanProductRepository) portssvc.ProductSvc {
	return &productService{productRepo: productRepo}
}

var _ portssvc.ProductSvc = (*productService)(nil)

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateLoanProductRequest, userID string) (*domain.LoanProduct, error) {
	if req.InterestRate.IsNegative() {
		return nil, fmt.Errorf("%w: interest rate cannot be negative", apperrors.ErrValidation)
	}
	if req.MaxDuration < 1 {
		return nil, fmt.Errorf("%w: max duration must be at least one month", apperrors.ErrValidation)
	}

	charges := make([]domain.LoanCharge, 0, len(req.Charges))
	for _, c := range req.Charges {
		if c.ChargeType != domain.ChargeFixed && c.ChargeType != domain.ChargePercentage {
			return nil, fmt.Errorf("%w: unknown charge type %q", apperrors.ErrValidation, c.ChargeType)
		}
		if !c.Value.IsPositive() {
			return nil, fmt.Errorf("%w: charge %q must have a positive value", apperrors.ErrValidation, c.Name)
		}
		charges = append(charges, domain.LoanCharge{Name: c.Name, ChargeType: c.ChargeType, Value: c.Value})
	}

	product := domain.LoanProduct{
		ProductID:    uuid.NewString(),
		Name:         req.Name,
		InterestRate: req.InterestRate,
		MaxDuration:  req.MaxDuration,
		Charges:      charges,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(userID, time.Now()),
	}

	if err := s.productRepo.SaveProduct(ctx, product); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save loan product", slog.String("name", req.Name))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Loan product created", slog.String("product_id", product.ProductID), slog.Int("charges", len(charges)))
	return &product, nil
}

func (s *productService) GetProductByID(ctx context.Context, productID string) (*domain.LoanProduct, error) {
	product, err := s.productRepo.FindProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find loan product", slog.String("product_id", productID))
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]domain.LoanProduct, error) {
	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list loan products")
		return nil, fmt.Errorf("failed to list loan products: %w", err)
	}
	return products, nil
}
