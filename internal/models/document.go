package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialDocument represents a document row. Optional references are
// pointers; which ones are set depends on the kind.
type FinancialDocument struct {
	DocumentID    string          `db:"document_id"`
	Kind          string          `db:"kind"`
	Name          string          `db:"name"`
	DocumentType  string          `db:"document_type"`
	Date          time.Time       `db:"date"`
	Currency      string          `db:"currency"`
	Amount        decimal.Decimal `db:"amount"`
	Status        string          `db:"status"`
	MatchedAmount decimal.Decimal `db:"matched_amount"`
	Detail        string          `db:"detail"`

	AccountID      *string          `db:"account_id"`
	OtherAccountID *string          `db:"other_account_id"`
	OtherAmount    *decimal.Decimal `db:"other_amount"`

	LoanEntityID  *string `db:"loan_entity_id"`
	LoanAccountID *string `db:"loan_account_id"`
	AgencyID      *string `db:"agency_id"`
	ProviderID    *string `db:"provider_id"`

	CurrentOperationID *string `db:"current_operation_id"`

	AuditFields
}

// DocumentStatusChange represents one row of the status audit trail.
type DocumentStatusChange struct {
	HistoryID  string    `db:"history_id"`
	DocumentID string    `db:"document_id"`
	UserID     string    `db:"user_id"`
	OldStatus  *string   `db:"old_status"` // NULL on the initial save
	NewStatus  string    `db:"new_status"`
	CreatedAt  time.Time `db:"created_at"`
}
