package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a cash/bank account held by the agency.
// Its balance is mutated exclusively by the accounting service; every other
// writer goes through that path. Accounts are never deleted, only disabled.
type Account struct {
	AccountID string          `json:"accountID"` // Primary key (UUID)
	Name      string          `json:"name"`      // Unique together with Currency
	Currency  string          `json:"currency"`  // ISO 4217 code
	Balance   decimal.Decimal `json:"balance"`   // Signed sum of all movements, 2dp
	Enabled   bool            `json:"enabled"`
	AuditFields
}
