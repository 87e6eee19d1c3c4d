package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/sacco_ledger/internal/apperrors"
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/sacco_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/sacco_ledger/internal/core/ports/services"
	"github.com/SscSPs/sacco_ledger/internal/dto"
	"github.com/google/uuid"
)

// chartOfAccountsService implements the ChartOfAccountsSvcFacade interface
type chartOfAccountsService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewChartOfAccountsService creates the registry that maps (scope, role) pairs to ledger accounts.
func NewChartOfAccountsService(repo portsrepo.AccountRepositoryFacade) portssvc.ChartOfAccountsSvcFacade {
	return &chartOfAccountsService{accountRepo: repo}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

func (s *chartOfAccountsService) ResolveAccount(ctx context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error) {
	if scope.IsZero() {
		return nil, fmt.Errorf("%w: no %s scope given for role %s", apperrors.ErrAccountNotConfigured, scope.Kind, role)
	}
	account, err := s.accountRepo.FindActiveAccountByScopeAndRole(ctx, scope, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active %s account for %s", apperrors.ErrAccountNotConfigured, role, scope)
		}
		s.LogError(ctx, err, "Failed to resolve account",
			slog.String("scope", scope.String()),
			slog.String("role", string(role)))
		return nil, fmt.Errorf("failed to resolve %s account for %s: %w", role, scope, err)
	}
	return account, nil
}

// ResolveFirst skips scopes without a mapping and fails only when none of them has one.
func (s *chartOfAccountsService) ResolveFirst(ctx context.Context, role domain.AccountRole, scopes ...domain.AccountScope) (*domain.Account, error) {
	tried := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		if scope.IsZero() {
			continue
		}
		account, err := s.ResolveAccount(ctx, scope, role)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, apperrors.ErrAccountNotConfigured) {
			return nil, err
		}
		tried = append(tried, scope.String())
	}
	return nil, fmt.Errorf("%w: no active %s account in any of %v", apperrors.ErrAccountNotConfigured, role, tried)
}

func (s *chartOfAccountsService) ProvisionGroupAccounts(ctx context.Context, groupID string, userID string) (int, error) {
	return s.provision(ctx, domain.GroupScope(groupID), domain.GroupAccountTemplates, userID)
}

func (s *chartOfAccountsService) ProvisionOrganizationAccounts(ctx context.Context, organizationID string, userID string) (int, error) {
	return s.provision(ctx, domain.OrganizationScope(organizationID), domain.OrganizationAccountTemplates, userID)
}

// provision inserts the template accounts that do not exist yet. Running it twice creates nothing the second time.
func (s *chartOfAccountsService) provision(ctx context.Context, scope domain.AccountScope, templates []domain.AccountTemplate, userID string) (int, error) {
	if scope.IsZero() {
		return 0, fmt.Errorf("%w: scope id is required", apperrors.ErrValidation)
	}

	now := time.Now()
	accounts := make([]domain.Account, 0, len(templates))
	for _, tpl := range templates {
		accounts = append(accounts, domain.Account{
			AccountID:   uuid.NewString(),
			Code:        domain.AccountCode(scope, tpl.CodeSuffix),
			Name:        tpl.Name,
			Scope:       scope,
			Role:        tpl.Role,
			AccountType: tpl.AccountType,
			IsActive:    true,
			AuditFields: domain.NewAuditFields(userID, now),
		})
	}

	created, err := s.accountRepo.SaveAccountsIfMissing(ctx, accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to provision accounts", slog.String("scope", scope.String()))
		return 0, fmt.Errorf("failed to provision accounts for %s: %w", scope, err)
	}

	s.LogInfo(ctx, "Accounts provisioned",
		slog.String("scope", scope.String()),
		slog.Int("created", created),
		slog.Int("templates", len(templates)))
	return created, nil
}

func (s *chartOfAccountsService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}
	if req.Role == "" {
		return nil, fmt.Errorf("%w: role is required", apperrors.ErrValidation)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, req.Code)
	if err == nil {
		return nil, fmt.Errorf("%w: account code %s is already used by account %s", apperrors.ErrDuplicate, req.Code, existing.AccountID)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up account code", slog.String("code", req.Code))
		return nil, err
	}

	account := domain.Account{
		AccountID:      uuid.NewString(),
		Code:           req.Code,
		Name:           req.Name,
		Scope:          domain.AccountScope{Kind: req.ScopeKind, ID: req.ScopeID},
		Role:           req.Role,
		AccountType:    req.AccountType,
		Description:    req.Description,
		OpeningBalance: req.OpeningBalance.Round(2),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, time.Now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account",
			slog.String("code", account.Code),
			slog.String("scope", account.Scope.String()),
			slog.String("role", string(account.Role)))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("scope", account.Scope.String()),
		slog.String("role", string(account.Role)))
	return &account, nil
}

func (s *chartOfAccountsService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *chartOfAccountsService) ListAccountsByScope(ctx context.Context, scope domain.AccountScope) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccountsByScope(ctx, scope)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.String("scope", scope.String()))
		return nil, fmt.Errorf("failed to list accounts for %s: %w", scope, err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *chartOfAccountsService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, time.Now()); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		}
		return err
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID), slog.String("user_id", userID))
	return nil
}
