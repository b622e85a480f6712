package models

import (
	"github.com/shopspring/decimal"
)

// Account represents a cash/bank account row.
type Account struct {
	AccountID   string `db:"account_id"`
	Name        string `db:"name"`
	Currency    string `db:"currency"`
	Enabled     bool   `db:"enabled"`
	AuditFields        // Embed common audit fields
	Balance     decimal.Decimal `db:"balance"` // Persisted signed movement sum
}
