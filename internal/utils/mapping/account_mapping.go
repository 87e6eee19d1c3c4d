package mapping

import (
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/SscSPs/sacco_ledger/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		Code:           d.Code,
		Name:           d.Name,
		ScopeKind:      string(d.Scope.Kind),
		ScopeID:        d.Scope.ID,
		Role:           string(d.Role),
		AccountType:    models.AccountType(d.AccountType),
		Description:    d.Description,
		OpeningBalance: d.OpeningBalance,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		Code:           m.Code,
		Name:           m.Name,
		Scope:          domain.AccountScope{Kind: domain.ScopeKind(m.ScopeKind), ID: m.ScopeID},
		Role:           domain.AccountRole(m.Role),
		AccountType:    domain.AccountType(m.AccountType),
		Description:    m.Description,
		OpeningBalance: m.OpeningBalance,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
