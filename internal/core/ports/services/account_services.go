package services

import (
	"context"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/dto"
)

// AccountResolverSvc maps semantic roles to concrete ledger accounts
type AccountResolverSvc interface {
	// ResolveAccount returns the active account mapped to (scope, role).
	// Fails with apperrors.ErrAccountNotConfigured when no active mapping exists.
	ResolveAccount(ctx context.Context, scope domain.AccountScope, role domain.AccountRole) (*domain.Account, error)

	// ResolveFirst tries the scopes in order and returns the first active mapping for role.
	ResolveFirst(ctx context.Context, role domain.AccountRole, scopes ...domain.AccountScope) (*domain.Account, error)
}

// AccountProvisionerSvc creates the standard account sets
type AccountProvisionerSvc interface {
	// ProvisionGroupAccounts creates the missing standard accounts of a group and returns how many were created.
	ProvisionGroupAccounts(ctx context.Context, groupID string, userID string) (int, error)

	// ProvisionOrganizationAccounts creates the missing standard accounts of the organization.
	ProvisionOrganizationAccounts(ctx context.Context, organizationID string, userID string) (int, error)
}

// AccountManagerSvc defines manual chart-of-accounts maintenance
type AccountManagerSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountsByScope(ctx context.Context, scope domain.AccountScope) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// ChartOfAccountsSvcFacade combines all chart-of-accounts service interfaces
type ChartOfAccountsSvcFacade interface {
	AccountResolverSvc
	AccountProvisionerSvc
	AccountManagerSvc
}
