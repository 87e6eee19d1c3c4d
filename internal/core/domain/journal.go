package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted JournalStatus = "POSTED"
)

// Journal groups the ledger entries written for one business event.
// (EventType, ReferenceID) is unique, so an event can only be posted once.
type Journal struct {
	JournalID   string          `json:"journalID"`
	EventType   EventType       `json:"eventType"`
	ReferenceID string          `json:"referenceID"` // The business record that caused the posting
	GroupID     string          `json:"groupID,omitempty"`
	JournalDate time.Time       `json:"journalDate"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // Sum of debits
	Status      JournalStatus   `json:"status"`
	AuditFields
}
