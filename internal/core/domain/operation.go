package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection indicates whether a movement increases or decreases an account balance.
type MovementDirection string

const (
	Input  MovementDirection = "INPUT"
	Output MovementDirection = "OUTPUT"
)

// Valid reports whether the direction is one of the two known values.
func (d MovementDirection) Valid() bool {
	return d == Input || d == Output
}

// Opposite returns the inverse direction. Unknown directions are returned unchanged.
func (d MovementDirection) Opposite() MovementDirection {
	switch d {
	case Input:
		return Output
	case Output:
		return Input
	}
	return d
}

// Sign returns +1 for Input and -1 for Output as a decimal multiplier.
func (d MovementDirection) Sign() decimal.Decimal {
	if d == Output {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// OperationConcept tags a ledger operation with the business event that produced it.
type OperationConcept string

const (
	ConceptDeposit          OperationConcept = "DEPOSIT"
	ConceptWithdraw         OperationConcept = "WITHDRAW"
	ConceptTransfer         OperationConcept = "TRANSFER"
	ConceptCurrencyExchange OperationConcept = "CURRENCY_EXCHANGE"
	ConceptLoanEntity       OperationConcept = "LOAN_ENTITY"
	ConceptLoanAccount      OperationConcept = "LOAN_ACCOUNT"
	ConceptAgency           OperationConcept = "AGENCY"
	ConceptProvider         OperationConcept = "PROVIDER"
	ConceptAdjustment       OperationConcept = "ADJUSTMENT"
)

// Operation is an atomic group of one or two movements representing a single
// real-world financial event. Operations are immutable once created; edits to
// the originating document append compensating operations instead.
type Operation struct {
	OperationID string           `json:"operationID"` // Primary key (UUID)
	UserID      string           `json:"userID"`      // Actor that caused the posting
	Concept     OperationConcept `json:"concept"`
	Detail      string           `json:"detail"`
	CreatedAt   time.Time        `json:"createdAt"`
	Movements   []Movement       `json:"movements,omitempty"` // 1-2 legs, primary first
}

// Movement is one signed change to one account's balance, always part of an
// Operation. Balance carries the account balance immediately after this
// movement in posting order; it is recomputed only by balance recalculation.
type Movement struct {
	MovementID  string            `json:"movementID"` // Primary key (UUID)
	Seq         int64             `json:"seq"`        // Posting order, assigned by the database on insert
	OperationID string            `json:"operationID"`
	AccountID   string            `json:"accountID"`
	Direction   MovementDirection `json:"direction"`
	Amount      decimal.Decimal   `json:"amount"`  // Always positive
	Balance     decimal.Decimal   `json:"balance"` // Account balance after this movement
	CreatedAt   time.Time         `json:"createdAt"`
}

// SignedAmount returns the amount with the sign implied by the direction.
func (m Movement) SignedAmount() decimal.Decimal {
	return m.Amount.Mul(m.Direction.Sign())
}
