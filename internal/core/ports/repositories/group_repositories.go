package repositories

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
)

// GroupReader defines read operations for groups and members
type GroupReader interface {
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)
	ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error)
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
	ListMembersByGroup(ctx context.Context, groupID string) ([]domain.Member, error)
}

// GroupWriter defines write operations for groups and members
type GroupWriter interface {
	SaveGroup(ctx context.Context, group domain.Group) error
	SaveMember(ctx context.Context, member domain.Member) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}
