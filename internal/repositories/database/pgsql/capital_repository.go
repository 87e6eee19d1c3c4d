package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCapitalRepository struct {
	BaseRepository
}

// newPgxCapitalRepository creates a new repository for capital transfers.
func newPgxCapitalRepository(pool *pgxpool.Pool) portsrepo.CapitalTransferRepository {
	return &PgxCapitalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CapitalTransferRepository = (*PgxCapitalRepository)(nil)

func (r *PgxCapitalRepository) SaveCapitalTransfer(ctx context.Context, transfer domain.CapitalTransfer) error {
	query := `
		INSERT INTO capital_transfers (
			transfer_id, group_id, transfer_type, amount, purpose, reference_number, approved_by, status,
			transfer_date, journal_id, created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		transfer.TransferID,
		transfer.GroupID,
		string(transfer.TransferType),
		transfer.Amount,
		transfer.Purpose,
		transfer.ReferenceNumber,
		transfer.ApprovedBy,
		string(transfer.Status),
		transfer.TransferDate,
		transfer.JournalID,
		transfer.CreatedAt,
		transfer.CreatedBy,
		transfer.LastUpdatedAt,
		transfer.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "save capital transfer "+transfer.TransferID)
	}
	return nil
}

func (r *PgxCapitalRepository) ListCapitalTransfersByGroup(ctx context.Context, groupID string) ([]domain.CapitalTransfer, error) {
	query := `
		SELECT transfer_id, group_id, transfer_type, amount, purpose, reference_number, approved_by, status,
		       transfer_date, journal_id, created_at, created_by, last_updated_at, last_updated_by
		FROM capital_transfers
		WHERE group_id = $1
		ORDER BY transfer_date, created_at
	`
	rows, err := r.DB(ctx).Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query capital transfers for group "+groupID, err)
	}
	defer rows.Close()

	transfers := []domain.CapitalTransfer{}
	for rows.Next() {
		var t domain.CapitalTransfer
		var transferType, status string
		if err := rows.Scan(
			&t.TransferID,
			&t.GroupID,
			&transferType,
			&t.Amount,
			&t.Purpose,
			&t.ReferenceNumber,
			&t.ApprovedBy,
			&status,
			&t.TransferDate,
			&t.JournalID,
			&t.CreatedAt,
			&t.CreatedBy,
			&t.LastUpdatedAt,
			&t.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan capital transfer row", err)
		}
		t.TransferType = domain.TransferType(transferType)
		t.Status = domain.TransferStatus(status)
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating capital transfer rows", err)
	}
	return transfers, nil
}

// GetCapitalPosition aggregates completed transfers. A group without transfers has a zero position.
func (r *PgxCapitalRepository) GetCapitalPosition(ctx context.Context, groupID string) (*domain.CapitalPosition, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN transfer_type = 'ADVANCE' THEN amount END), 0),
			COALESCE(SUM(CASE WHEN transfer_type = 'RETURN' THEN amount END), 0)
		FROM capital_transfers
		WHERE group_id = $1 AND status = 'COMPLETED'
	`
	position := domain.CapitalPosition{GroupID: groupID}
	if err := r.DB(ctx).QueryRow(ctx, query, groupID).Scan(&position.Advanced, &position.Returned); err != nil {
		return nil, fmt.Errorf("error querying capital position: %w", err)
	}
	position.Outstanding = position.Advanced.Sub(position.Returned)
	return &position, nil
}
