package repositories

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// CapitalTransferRepository persists completed capital transfers.
type CapitalTransferRepository interface {
	SaveCapitalTransfer(ctx context.Context, transfer domain.CapitalTransfer) error
	ListCapitalTransfersByGroup(ctx context.Context, groupID string) ([]domain.CapitalTransfer, error)

	// GetCapitalPosition aggregates advanced and returned totals for a group.
	GetCapitalPosition(ctx context.Context, groupID string) (*domain.CapitalPosition, error)
}
