package domain

// SettlementPolicy holds the configurable settlement rules injected into the loan services.
type SettlementPolicy struct {
	RepaymentPriority RepaymentPriority
	// ApplyChargesOnIssuance bills product charges when the loan is disbursed.
	ApplyChargesOnIssuance bool
	// DeductChargesFromPrincipal withholds billed charges from the cash paid out.
	DeductChargesFromPrincipal bool
	// DisburseOnApproval posts the disbursement in the same transaction as the approval.
	DisburseOnApproval bool
}

// DefaultSettlementPolicy returns interest-first allocation with charges deducted at issuance.
func DefaultSettlementPolicy() SettlementPolicy {
	return SettlementPolicy{
		RepaymentPriority:          PriorityInterest,
		ApplyChargesOnIssuance:     true,
		DeductChargesFromPrincipal: true,
		DisburseOnApproval:         true,
	}
}
