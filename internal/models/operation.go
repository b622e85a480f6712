package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation represents a row of the immutable operation log.
type Operation struct {
	OperationID string    `db:"operation_id"`
	UserID      string    `db:"user_id"`
	Concept     string    `db:"concept"`
	Detail      string    `db:"detail"`
	CreatedAt   time.Time `db:"created_at"`
}

// OperationMovement represents one leg of an operation.
type OperationMovement struct {
	MovementID  string          `db:"movement_id"`
	Seq         int64           `db:"seq"` // Database-assigned posting order
	OperationID string          `db:"operation_id"`
	AccountID   string          `db:"account_id"`
	Direction   string          `db:"direction"`
	Amount      decimal.Decimal `db:"amount"`
	Balance     decimal.Decimal `db:"balance"` // Account balance after this movement
	CreatedAt   time.Time       `db:"created_at"`
}
