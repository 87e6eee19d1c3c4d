package dto

import (
	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GroupFinancialSummaryResponse represents the group overview report response
type GroupFinancialSummaryResponse struct {
	GroupID          string                   `json:"groupID"`
	AsOf             string                   `json:"asOf"`
	TotalAssets      decimal.Decimal          `json:"totalAssets"`
	TotalLiabilities decimal.Decimal          `json:"totalLiabilities"`
	TotalRevenue     decimal.Decimal          `json:"totalRevenue"`
	TotalExpenses    decimal.Decimal          `json:"totalExpenses"`
	NetIncome        decimal.Decimal          `json:"netIncome"`
	EquityBalance    decimal.Decimal          `json:"equityBalance"`
	Accounts         []AccountBalanceResponse `json:"accounts"`
}

// ToGroupFinancialSummaryResponse converts the domain summary
func ToGroupFinancialSummaryResponse(s *domain.GroupFinancialSummary) GroupFinancialSummaryResponse {
	accounts := make([]AccountBalanceResponse, len(s.Accounts))
	for i := range s.Accounts {
		accounts[i] = ToAccountBalanceResponse(&s.Accounts[i])
	}
	return GroupFinancialSummaryResponse{
		GroupID:          s.GroupID,
		AsOf:             s.AsOf.Format("2006-01-02"),
		TotalAssets:      s.TotalAssets,
		TotalLiabilities: s.TotalLiabilities,
		TotalRevenue:     s.TotalRevenue,
		TotalExpenses:    s.TotalExpenses,
		NetIncome:        s.NetIncome,
		EquityBalance:    s.EquityBalance,
		Accounts:         accounts,
	}
}
