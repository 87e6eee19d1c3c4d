package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType is the direction of a capital transfer.
type TransferType string

const (
	TransferAdvance TransferType = "ADVANCE" // Organization -> group
	TransferReturn  TransferType = "RETURN"  // Group -> organization
)

// TransferStatus of a capital transfer. Only completed transfers are ever stored.
type TransferStatus string

const (
	TransferCompleted TransferStatus = "COMPLETED"
)

// CapitalTransfer records a movement of funds between the organization and a group.
type CapitalTransfer struct {
	TransferID      string          `json:"transferID"`
	GroupID         string          `json:"groupID"`
	TransferType    TransferType    `json:"transferType"`
	Amount          decimal.Decimal `json:"amount"`
	Purpose         string          `json:"purpose"`
	ReferenceNumber string          `json:"referenceNumber"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	Status          TransferStatus  `json:"status"`
	TransferDate    time.Time       `json:"transferDate"`
	JournalID       string          `json:"journalID"`
	AuditFields
}

// CapitalPosition is a group's derived capital standing with the organization.
type CapitalPosition struct {
	GroupID     string          `json:"groupID"`
	Advanced    decimal.Decimal `json:"totalCapitalAdvanced"`
	Returned    decimal.Decimal `json:"totalCapitalReturned"`
	Outstanding decimal.Decimal `json:"netCapitalOutstanding"`
}
