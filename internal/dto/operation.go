package dto

import (
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MovementResponse is the API representation of one ledger movement.
type MovementResponse struct {
	MovementID  string                   `json:"movementID"`
	OperationID string                   `json:"operationID"`
	AccountID   string                   `json:"accountID"`
	Direction   domain.MovementDirection `json:"direction"`
	Amount      decimal.Decimal          `json:"amount"`
	Balance     decimal.Decimal          `json:"balance"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// OperationResponse is the API representation of a ledger operation.
type OperationResponse struct {
	OperationID string                  `json:"operationID"`
	UserID      string                  `json:"userID"`
	Concept     domain.OperationConcept `json:"concept"`
	Detail      string                  `json:"detail"`
	CreatedAt   time.Time               `json:"createdAt"`
	Movements   []MovementResponse      `json:"movements"`
}

// ToMovementResponse maps a domain movement.
func ToMovementResponse(m domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:  m.MovementID,
		OperationID: m.OperationID,
		AccountID:   m.AccountID,
		Direction:   m.Direction,
		Amount:      m.Amount,
		Balance:     m.Balance,
		CreatedAt:   m.CreatedAt,
	}
}

// ToMovementResponses maps a slice of domain movements.
func ToMovementResponses(ms []domain.Movement) []MovementResponse {
	out := make([]MovementResponse, len(ms))
	for i, m := range ms {
		out[i] = ToMovementResponse(m)
	}
	return out
}

// ToOperationResponse maps a domain operation with its movements.
func ToOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		OperationID: op.OperationID,
		UserID:      op.UserID,
		Concept:     op.Concept,
		Detail:      op.Detail,
		CreatedAt:   op.CreatedAt,
		Movements:   ToMovementResponses(op.Movements),
	}
}

// ListMovementsResponse is a page of movements plus the next-page token.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}
