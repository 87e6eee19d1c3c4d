package domain

// Group is a savings group owned by the organization. Each group owns its own set of ledger accounts.
type Group struct {
	GroupID     string `json:"groupID"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}

// Member belongs to exactly one group.
type Member struct {
	MemberID     string `json:"memberID"`
	GroupID      string `json:"groupID"`
	MemberNumber string `json:"memberNumber"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}
