package models

import (
	"github.com/shopspring/decimal"
)

// Match represents a credit/debit document link.
type Match struct {
	MatchID          string          `db:"match_id"`
	Family           string          `db:"family"`
	CreditDocumentID string          `db:"credit_document_id"`
	DebitDocumentID  string          `db:"debit_document_id"`
	Amount           decimal.Decimal `db:"amount"`
	AuditFields
}

// PartySummary represents a per-party aggregate row.
type PartySummary struct {
	SummaryID     string          `db:"summary_id"`
	Family        string          `db:"family"`
	PartyID       string          `db:"party_id"`
	Currency      string          `db:"currency"` // Empty for currency-unscoped families
	CreditAmount  decimal.Decimal `db:"credit_amount"`
	DebitAmount   decimal.Decimal `db:"debit_amount"`
	MatchedAmount decimal.Decimal `db:"matched_amount"`
	AuditFields
}
