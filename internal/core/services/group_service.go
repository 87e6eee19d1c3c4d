package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// groupService implements the GroupSvcFacade interface
type groupService struct {
	BaseService
	transactor  portsrepo.TransactionManager
	groupRepo   portsrepo.GroupRepositoryFacade
	provisioner portssvc.AccountProvisionerSvc
}

// NewGroupService creates a new group service.
func NewGroupService(transactor portsrepo.TransactionManager, groupRepo portsrepo.GroupRepositoryFacade, provisioner portssvc.AccountProvisionerSvc) portssvc.GroupSvcFacade {
	return &groupService{
		transactor:  transactor,
		groupRepo:   groupRepo,
		provisioner: provisioner,
	}
}

var _ portssvc.GroupSvcFacade = (*groupService)(nil)

func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, userID string) (*domain.Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", apperrors.ErrValidation)
	}

	group := domain.Group{
		GroupID:     uuid.NewString(),
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, time.Now()),
	}

	var created int
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.SaveGroup(txCtx, group); err != nil {
			return err
		}
		var err error
		created, err = s.provisioner.ProvisionGroupAccounts(txCtx, group.GroupID, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to create group", slog.String("name", name))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Group created",
		slog.String("group_id", group.GroupID),
		slog.Int("accounts_provisioned", created))
	return &group, nil
}

func (s *groupService) GetGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find group", slog.String("group_id", groupID))
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, limit int, offset int) ([]domain.Group, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	groups, err := s.groupRepo.ListGroups(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list groups")
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) CreateMember(ctx context.Context, groupID string, req dto.CreateMemberRequest, userID string) (*domain.Member, error) {
	group, err := s.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, fmt.Errorf("%w: group %s is inactive", apperrors.ErrValidation, groupID)
	}

	member := domain.Member{
		MemberID:     uuid.NewString(),
		GroupID:      groupID,
		MemberNumber: strings.TrimSpace(req.MemberNumber),
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(userID, time.Now()),
	}
	if member.MemberNumber == "" || member.Name == "" {
		return nil, fmt.Errorf("%w: member number and name are required", apperrors.ErrValidation)
	}

	if err := s.groupRepo.SaveMember(ctx, member); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save member", slog.String("group_id", groupID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Member registered", slog.String("member_id", member.MemberID), slog.String("group_id", groupID))
	return &member, nil
}

func (s *groupService) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	member, err := s.groupRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find member", slog.String("member_id", memberID))
		}
		return nil, err
	}
	return member, nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	if _, err := s.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	members, err := s.groupRepo.ListMembersByGroup(ctx, groupID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list members", slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to list members of group %s: %w", groupID, err)
	}
	return members, nil
}
