package dto

import (
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest configures a chart-of-accounts mapping by hand.
type CreateAccountRequest struct {
	Code           string             `json:"code" binding:"required"`
	Name           string             `json:"name" binding:"required"`
	ScopeKind      domain.ScopeKind   `json:"scopeKind" binding:"required,oneof=ORGANIZATION GROUP PRODUCT"`
	ScopeID        string             `json:"scopeID" binding:"required"`
	Role           domain.AccountRole `json:"role" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Description    string             `json:"description"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string             `json:"accountID"`
	Code           string             `json:"code"`
	Name           string             `json:"name"`
	ScopeKind      domain.ScopeKind   `json:"scopeKind"`
	ScopeID        string             `json:"scopeID"`
	Role           domain.AccountRole `json:"role"`
	AccountType    domain.AccountType `json:"accountType"`
	Description    string             `json:"description"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
	IsActive       bool               `json:"isActive"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		Code:           acc.Code,
		Name:           acc.Name,
		ScopeKind:      acc.Scope.Kind,
		ScopeID:        acc.Scope.ID,
		Role:           acc.Role,
		AccountType:    acc.AccountType,
		Description:    acc.Description,
		OpeningBalance: acc.OpeningBalance,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID   string             `json:"accountID"`
	Code        string             `json:"code"`
	Role        domain.AccountRole `json:"role"`
	AccountType domain.AccountType `json:"accountType"`
	Balance     decimal.Decimal    `json:"balance"`
	AsOf        time.Time          `json:"asOf"`
}

// ToAccountBalanceResponse converts a domain.AccountBalance.
func ToAccountBalanceResponse(b *domain.AccountBalance) AccountBalanceResponse {
	return AccountBalanceResponse{
		AccountID:   b.AccountID,
		Code:        b.Code,
		Role:        b.Role,
		AccountType: b.AccountType,
		Balance:     b.Balance,
		AsOf:        b.AsOf,
	}
}
