package dto

import (
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateGroupRequest defines the data needed to create a group.
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GroupResponse defines the data returned for a group.
type GroupResponse struct {
	GroupID     string    `json:"groupID"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy"`
}

// ListGroupsParams defines query parameters for listing groups.
type ListGroupsParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// CreateMemberRequest registers a member in a group.
type CreateMemberRequest struct {
	MemberNumber string `json:"memberNumber" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
}

// MemberResponse defines the data returned for a member.
type MemberResponse struct {
	MemberID     string    `json:"memberID"`
	GroupID      string    `json:"groupID"`
	MemberNumber string    `json:"memberNumber"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SavingsRequest is a savings deposit or withdrawal.
type SavingsRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Date        *time.Time      `json:"date"`
	ReferenceID string          `json:"referenceID"` // Optional; repeating a reference is rejected as a duplicate
	Notes       string          `json:"notes"`
}

// SavingsBalanceResponse is a member's savings balance.
type SavingsBalanceResponse struct {
	MemberID string          `json:"memberID"`
	Balance  decimal.Decimal `json:"balance"`
}

// ToGroupResponse converts a domain.Group.
func ToGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		GroupID:     g.GroupID,
		Name:        g.Name,
		Description: g.Description,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt,
		CreatedBy:   g.CreatedBy,
	}
}

// ToGroupResponses converts a slice of groups.
func ToGroupResponses(groups []domain.Group) []GroupResponse {
	res := make([]GroupResponse, len(groups))
	for i := range groups {
		res[i] = ToGroupResponse(&groups[i])
	}
	return res
}

// ToMemberResponse converts a domain.Member.
func ToMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		MemberID:     m.MemberID,
		GroupID:      m.GroupID,
		MemberNumber: m.MemberNumber,
		Name:         m.Name,
		Phone:        m.Phone,
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
	}
}

// ToMemberResponses converts a slice of members.
func ToMemberResponses(members []domain.Member) []MemberResponse {
	res := make([]MemberResponse, len(members))
	for i := range members {
		res[i] = ToMemberResponse(&members[i])
	}
	return res
}
