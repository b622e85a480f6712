package models

// RelatedParty represents a row of the related-party registry.
type RelatedParty struct {
	PartyID string `db:"party_id"`
	Kind    string `db:"kind"`
	Name    string `db:"name"`
	Enabled bool   `db:"enabled"`
	AuditFields
}
