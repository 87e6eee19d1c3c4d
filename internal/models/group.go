package models

// Group is the groups row.
type Group struct {
	GroupID     string `db:"group_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	AuditFields
}

// Member is the members row.
type Member struct {
	MemberID     string `db:"member_id"`
	GroupID      string `db:"group_id"`
	MemberNumber string `db:"member_number"`
	Name         string `db:"name"`
	Phone        string `db:"phone"`
	IsActive     bool   `db:"is_active"`
	AuditFields
}
