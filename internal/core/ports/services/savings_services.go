package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// SavingsSvc posts member savings movements
type SavingsSvc interface {
	Deposit(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error)

	// Withdraw fails with apperrors.ErrInsufficientSavings when the member's savings cannot cover the amount.
	Withdraw(ctx context.Context, memberID string, req dto.SavingsRequest, userID string) (*domain.PostingResult, error)
}
