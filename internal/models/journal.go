package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted JournalStatus = "POSTED"
)

// Journal represents a single, balanced financial event composed of multiple transactions.
type Journal struct {
	JournalID   string          `db:"journal_id"`
	EventType   string          `db:"event_type"`
	ReferenceID string          `db:"reference_id"`
	GroupID     *string         `db:"group_id"` // Nullable for organization-only postings
	JournalDate time.Time       `db:"journal_date"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
	Status      JournalStatus   `db:"status"`
	AuditFields
}
