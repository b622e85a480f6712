package domain

import (
	"github.com/shopspring/decimal"
)

// MatchFamily groups the document kinds whose credit/debit sides may be
// matched against each other and aggregated per related party.
type MatchFamily string

const (
	MatchFamilyLoanEntity  MatchFamily = "LOAN_ENTITY"
	MatchFamilyLoanAccount MatchFamily = "LOAN_ACCOUNT"
	MatchFamilyAgency      MatchFamily = "AGENCY"
	MatchFamilyProvider    MatchFamily = "PROVIDER"
)

// CurrencyScoped reports whether summaries and matches in this family are
// keyed by currency. Loan-account aggregates are not: the referenced account
// already fixes the currency.
func (f MatchFamily) CurrencyScoped() bool {
	return f != MatchFamilyLoanAccount
}

// MatchSide distinguishes the two ends of a match.
type MatchSide string

const (
	CreditSide MatchSide = "CREDIT"
	DebitSide  MatchSide = "DEBIT"
)

// Match links a credit document and a debit document of the same family,
// asserting that Amount of one offsets Amount of the other. The
// (credit, debit) pair is unique; both documents must be Ready while the
// match exists.
type Match struct {
	MatchID          string          `json:"matchID"` // Primary key (UUID)
	Family           MatchFamily     `json:"family"`
	CreditDocumentID string          `json:"creditDocumentID"`
	DebitDocumentID  string          `json:"debitDocumentID"`
	Amount           decimal.Decimal `json:"amount"` // Matched amount, always positive
	AuditFields
}
