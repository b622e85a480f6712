package domain

import (
	"github.com/shopspring/decimal"
)

// PartySummary is the running aggregate kept per related party (and currency,
// where the family is currency scoped): the sum of Ready credit documents,
// Ready debit documents, and active matched amounts against that party.
// Rows are created lazily on the first contributing document or match.
type PartySummary struct {
	SummaryID     string          `json:"summaryID"` // Primary key (UUID)
	Family        MatchFamily     `json:"family"`
	PartyID       string          `json:"partyID"`
	Currency      string          `json:"currency"` // Empty for non currency-scoped families
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	MatchedAmount decimal.Decimal `json:"matchedAmount"`
	AuditFields
}
