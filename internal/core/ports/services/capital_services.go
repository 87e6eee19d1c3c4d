package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CapitalSvc moves funds between the organization and its groups
type CapitalSvc interface {
	// AdvanceCapital moves organization funds to a group.
	// Fails with apperrors.ErrInsufficientOrganizationFunds when the organization bank cannot cover amount.
	AdvanceCapital(ctx context.Context, groupID string, amount decimal.Decimal, purpose string, approverID string, referenceNumber string) (*domain.CapitalTransfer, error)

	// ReturnCapital moves group funds back to the organization.
	// Fails with apperrors.ErrInsufficientGroupFunds when the group bank cannot cover amount.
	ReturnCapital(ctx context.Context, groupID string, amount decimal.Decimal, initiatorID string, notes string) (*domain.CapitalTransfer, error)

	GetCapitalPosition(ctx context.Context, groupID string) (*domain.CapitalPosition, error)
	ListCapitalTransfers(ctx context.Context, groupID string) ([]domain.CapitalTransfer, error)
}
