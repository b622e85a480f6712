package services

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PostOperationParams describes one ledger posting: a primary leg and an
// optional second leg posted with the opposite direction. Accounts must
// already be row-locked by the caller's transaction; the engine batches no
// locking of its own so an outer operation can lock every account once.
type PostOperationParams struct {
	UserID    string
	Concept   domain.OperationConcept
	Detail    string
	Timestamp time.Time

	Account   *domain.Account
	Direction domain.MovementDirection
	Amount    decimal.Decimal

	// OtherAccount, when set, receives the opposite-direction leg. With
	// OtherAmount nil both legs share Amount and must share currency; with
	// OtherAmount set the legs may differ in currency (exchange).
	OtherAccount *domain.Account
	OtherAmount  *decimal.Decimal
}

// AccountingSvcFacade is the double-entry core: the movement posting
// primitive and the balance audit/repair operations.
type AccountingSvcFacade interface {
	// PostSimpleOperation validates and posts one operation with 1-2
	// movements inside the caller's transaction, updating account balances
	// and recording post-movement snapshots. The locked domain.Account
	// values passed in are mutated to their new balances.
	PostSimpleOperation(ctx context.Context, tx pgx.Tx, p PostOperationParams) (*domain.Operation, error)

	// CheckBalance recomputes the signed movement sum for the account and
	// compares it to the stored balance at 2-decimal precision.
	CheckBalance(ctx context.Context, accountID string) (bool, decimal.Decimal, error)

	// RecalculateBalance replays the account's movements in posting order,
	// repairing drifted snapshots and the stored balance. Idempotent.
	RecalculateBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error)

	// GetOperation retrieves an operation with its movements.
	GetOperation(ctx context.Context, operationID string) (*domain.Operation, error)

	// ListAccountMovements retrieves a paginated movement history for an account.
	ListAccountMovements(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Movement, *string, error)
}
