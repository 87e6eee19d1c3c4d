package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// GroupReaderSvc defines read operations for groups and members
type GroupReaderSvc interface {
	GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error)
	ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error)
	GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
	ListMembers(ctx context.Context, groupID string) ([]domain.Member, error)
}

// GroupWriterSvc defines write operations for groups and members
type GroupWriterSvc interface {
	// CreateGroup persists a group and provisions its standard accounts in one transaction.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error)
	CreateMember(ctx context.Context, groupID string, req dto.CreateMemberRequest, userID string) (*domain.Member, error)
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
}
