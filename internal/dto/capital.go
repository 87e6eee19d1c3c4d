package dto

import (
	"time"

	"github.com/SscSPs/sacco_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AdvanceCapitalRequest moves organization funds to a group.
type AdvanceCapitalRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Purpose         string          `json:"purpose" binding:"required"`
	ReferenceNumber string          `json:"referenceNumber"`
}

// ReturnCapitalRequest moves group funds back to the organization.
type ReturnCapitalRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
	Notes  string          `json:"notes"`
}

// CapitalTransferResponse defines the data returned for a capital transfer.
type CapitalTransferResponse struct {
	TransferID      string          `json:"transferID"`
	GroupID         string          `json:"groupID"`
	TransferType    string          `json:"transferType"`
	Amount          decimal.Decimal `json:"amount"`
	Purpose         string          `json:"purpose"`
	ReferenceNumber string          `json:"referenceNumber"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	Status          string          `json:"status"`
	TransferDate    time.Time       `json:"transferDate"`
	JournalID       string          `json:"journalID"`
	CreatedBy       string          `json:"createdBy"`
}

// CapitalOverviewResponse is a group's capital position with its transfer history.
type CapitalOverviewResponse struct {
	Position  domain.CapitalPosition    `json:"position"`
	Transfers []CapitalTransferResponse `json:"transfers"`
}

// ToCapitalTransferResponse converts a domain.CapitalTransfer.
func ToCapitalTransferResponse(t *domain.CapitalTransfer) CapitalTransferResponse {
	return CapitalTransferResponse{
		TransferID:      t.TransferID,
		GroupID:         t.GroupID,
		TransferType:    string(t.TransferType),
		Amount:          t.Amount,
		Purpose:         t.Purpose,
		ReferenceNumber: t.ReferenceNumber,
		ApprovedBy:      t.ApprovedBy,
		Status:          string(t.Status),
		TransferDate:    t.TransferDate,
		JournalID:       t.JournalID,
		CreatedBy:       t.CreatedBy,
	}
}

// ToCapitalTransferResponses converts a slice of transfers.
func ToCapitalTransferResponses(transfers []domain.CapitalTransfer) []CapitalTransferResponse {
	res := make([]CapitalTransferResponse, len(transfers))
	for i := range transfers {
		res[i] = ToCapitalTransferResponse(&transfers[i])
	}
	return res
}
