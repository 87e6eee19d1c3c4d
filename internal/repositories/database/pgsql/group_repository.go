package pgsql

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/sacco_ledger/internal/models"
	"github.com/SscSPs/sacco_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for groups and members.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryFacade {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryFacade
var _ portsrepo.GroupRepositoryFacade = (*PgxGroupRepository)(nil)

const fullGroupSelectQuery = `
SELECT
	g.group_id, g.name, g.description, g.is_active,
	g.created_at, g.created_by, g.last_updated_at, g.last_updated_by
FROM groups g
`

const fullMemberSelectQuery = `
SELECT
	m.member_id, m.group_id, m.member_number, m.name, m.phone, m.is_active,
	m.created_at, m.created_by, m.last_updated_at, m.last_updated_by
FROM members m
`

// getGroups private func to get groups from the select query filters
func (r *PgxGroupRepository) getGroups(ctx context.Context, filterQuery string, args ...any) ([]domain.Group, error) {
	rows, err := r.DB(ctx).Query(ctx, fullGroupSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query groups", err)
	}
	modelGroups, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Group])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect group rows", err)
	}
	groups := make([]domain.Group, len(modelGroups))
	for i, m := range modelGroups {
		groups[i] = mapping.ToDomainGroup(m)
	}
	return groups, nil
}

func (r *PgxGroupRepository) getMembers(ctx context.Context, filterQuery string, args ...any) ([]domain.Member, error) {
	rows, err := r.DB(ctx).Query(ctx, fullMemberSelectQuery+filterQuery, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query members", err)
	}
	modelMembers, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Member])
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to collect member rows", err)
	}
	members := make([]domain.Member, len(modelMembers))
	for i, m := range modelMembers {
		members[i] = mapping.ToDomainMember(m)
	}
	return members, nil
}

func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group) error {
	query := `
		INSERT INTO groups (
			group_id, name, description, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		group.GroupID,
		group.Name,
		group.Description,
		group.IsActive,
		group.CreatedAt,
		group.CreatedBy,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "save group "+group.GroupID)
	}
	return nil
}

func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	groups, err := r.getGroups(ctx, "WHERE g.group_id = $1", groupID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &groups[0], nil
}

func (r *PgxGroupRepository) ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	if limit <= 0 {
		limit = 20
	}
	return r.getGroups(ctx, "ORDER BY g.name LIMIT $1 OFFSET $2", limit, offset)
}

func (r *PgxGroupRepository) SaveMember(ctx context.Context, member domain.Member) error {
	query := `
		INSERT INTO members (
			member_id, group_id, member_number, name, phone, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		member.MemberID,
		member.GroupID,
		member.MemberNumber,
		member.Name,
		member.Phone,
		member.IsActive,
		member.CreatedAt,
		member.CreatedBy,
		member.LastUpdatedAt,
		member.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "save member "+member.MemberNumber+" in group "+member.GroupID)
	}
	return nil
}

func (r *PgxGroupRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	members, err := r.getMembers(ctx, "WHERE m.member_id = $1", memberID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &members[0], nil
}

func (r *PgxGroupRepository) ListMembersByGroup(ctx context.Context, groupID string) ([]domain.Member, error) {
	return r.getMembers(ctx, "WHERE m.group_id = $1 ORDER BY m.member_number", groupID)
}
