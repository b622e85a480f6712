package repositories

import (
	"context"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OperationReader defines read operations for the immutable operation log.
type OperationReader interface {
	// FindOperationByID retrieves an operation with its movements, in leg order.
	FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error)

	// FindMovementsByAccountID retrieves all movements for an account in
	// posting order (creation order, movement id as tie-breaker).
	FindMovementsByAccountID(ctx context.Context, accountID string) ([]domain.Movement, error)

	// ListMovementsByAccountID retrieves a paginated page of movements for an
	// account, newest first, using token-based pagination.
	ListMovementsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Movement, *string, error)
}

// OperationWriter defines the append-only write operations for the ledger.
type OperationWriter interface {
	// SaveOperationInTx inserts an operation and its movements within the
	// caller's transaction. Rows are never updated afterwards.
	SaveOperationInTx(ctx context.Context, tx pgx.Tx, op domain.Operation) error

	// FindMovementsByAccountIDInTx is the in-transaction variant of
	// FindMovementsByAccountID, used by balance recalculation while the
	// account row is locked.
	FindMovementsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.Movement, error)

	// UpdateMovementBalanceInTx rewrites one movement's running-balance
	// snapshot. Used only by balance recalculation.
	UpdateMovementBalanceInTx(ctx context.Context, tx pgx.Tx, movementID string, balance decimal.Decimal) error
}

// OperationRepositoryFacade combines all operation-related repository interfaces.
type OperationRepositoryFacade interface {
	OperationReader
	OperationWriter
}

// OperationRepositoryWithTx extends OperationRepositoryFacade with transaction capabilities.
type OperationRepositoryWithTx interface {
	OperationRepositoryFacade
	TransactionManager
}
