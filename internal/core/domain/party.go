package domain

// PartyKind distinguishes the registries a related party can belong to.
type PartyKind string

const (
	PartyLoanEntity PartyKind = "LOAN_ENTITY"
	PartyAgency     PartyKind = "AGENCY"
	PartyProvider   PartyKind = "PROVIDER"
)

// RelatedParty is a loan entity, sub-agency, or provider against which
// credit/debit documents and their matches are aggregated. Loan-account
// parties are Accounts and live in the accounts table instead.
type RelatedParty struct {
	PartyID string    `json:"partyID"` // Primary key (UUID)
	Kind    PartyKind `json:"kind"`
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	AuditFields
}
