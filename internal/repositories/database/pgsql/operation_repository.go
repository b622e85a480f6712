package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/atlastours/backoffice/internal/models"
	"github.com/atlastours/backoffice/internal/utils/pagination"
)

type PgxOperationRepository struct {
	BaseRepository
}

// newPgxOperationRepository creates a new repository for the operation log.
func newPgxOperationRepository(pool *pgxpool.Pool) portsrepo.OperationRepositoryWithTx {
	return &PgxOperationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.OperationRepositoryWithTx = (*PgxOperationRepository)(nil)

func toDomainMovement(m models.OperationMovement) domain.Movement {
	return domain.Movement{
		MovementID:  m.MovementID,
		Seq:         m.Seq,
		OperationID: m.OperationID,
		AccountID:   m.AccountID,
		Direction:   domain.MovementDirection(m.Direction),
		Amount:      m.Amount,
		Balance:     m.Balance,
		CreatedAt:   m.CreatedAt,
	}
}

// seq is database-assigned, so inserts name one column fewer than selects.
const movementColumns = `movement_id, seq, operation_id, account_id, direction, amount, balance, created_at`
const movementInsertColumns = `movement_id, operation_id, account_id, direction, amount, balance, created_at`

func scanMovement(row pgx.Row) (models.OperationMovement, error) {
	var m models.OperationMovement
	err := row.Scan(
		&m.MovementID,
		&m.Seq,
		&m.OperationID,
		&m.AccountID,
		&m.Direction,
		&m.Amount,
		&m.Balance,
		&m.CreatedAt,
	)
	return m, err
}

// SaveOperationInTx inserts an operation and its movements within the
// caller's transaction. Rows are never updated afterwards.
func (r *PgxOperationRepository) SaveOperationInTx(ctx context.Context, tx pgx.Tx, op domain.Operation) error {
	opQuery := `
		INSERT INTO operations (operation_id, user_id, concept, detail, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := tx.Exec(ctx, opQuery,
		op.OperationID, op.UserID, string(op.Concept), op.Detail, op.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert operation %s: %w", op.OperationID, err)
	}

	movQuery := `
		INSERT INTO operation_movements (` + movementInsertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, m := range op.Movements {
		batch.Queue(movQuery,
			m.MovementID, m.OperationID, m.AccountID, string(m.Direction), m.Amount, m.Balance, m.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range op.Movements {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert movement of operation %s: %w", op.OperationID, err)
		}
	}
	return nil
}

// FindOperationByID retrieves an operation with its movements in leg order.
func (r *PgxOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	opQuery := `
		SELECT operation_id, user_id, concept, detail, created_at
		FROM operations
		WHERE operation_id = $1;
	`
	var m models.Operation
	err := r.Pool.QueryRow(ctx, opQuery, operationID).Scan(
		&m.OperationID, &m.UserID, &m.Concept, &m.Detail, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find operation by ID %s: %w", operationID, err)
	}

	movQuery := `
		SELECT ` + movementColumns + `
		FROM operation_movements
		WHERE operation_id = $1
		ORDER BY seq ASC;
	`
	rows, err := r.Pool.Query(ctx, movQuery, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements of operation %s: %w", operationID, err)
	}
	defer rows.Close()

	op := domain.Operation{
		OperationID: m.OperationID,
		UserID:      m.UserID,
		Concept:     domain.OperationConcept(m.Concept),
		Detail:      m.Detail,
		CreatedAt:   m.CreatedAt,
	}
	for rows.Next() {
		mv, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		op.Movements = append(op.Movements, toDomainMovement(mv))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return &op, nil
}

func (r *PgxOperationRepository) queryMovements(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, accountID string) ([]domain.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM operation_movements
		WHERE account_id = $1
		ORDER BY seq ASC;
	`
	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements of account %s: %w", accountID, err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, toDomainMovement(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return movements, nil
}

// FindMovementsByAccountID retrieves all movements for an account in posting order.
func (r *PgxOperationRepository) FindMovementsByAccountID(ctx context.Context, accountID string) ([]domain.Movement, error) {
	return r.queryMovements(ctx, r.Pool, accountID)
}

// FindMovementsByAccountIDInTx is the in-transaction variant, used by balance
// recalculation while the account row is locked.
func (r *PgxOperationRepository) FindMovementsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) ([]domain.Movement, error) {
	return r.queryMovements(ctx, tx, accountID)
}

// ListMovementsByAccountID retrieves one page of movements, newest first,
// using token-based pagination keyed on the posting sequence.
func (r *PgxOperationRepository) ListMovementsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM operation_movements
		WHERE account_id = $1
	`
	args := []any{accountID}
	if nextToken != nil && *nextToken != "" {
		fields, err := pagination.DecodeMultiFieldToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		seq, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid pagination token", apperrors.ErrValidation)
		}
		query += ` AND seq < $2`
		args = append(args, seq)
	}
	query += fmt.Sprintf(`
		ORDER BY seq DESC
		LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list movements of account %s: %w", accountID, err)
	}
	defer rows.Close()

	movements := make([]domain.Movement, 0, limit+1)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, toDomainMovement(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating movement rows: %w", err)
	}

	var token *string
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		t := pagination.EncodeMultiFieldToken(strconv.FormatInt(last.Seq, 10))
		token = &t
	}
	return movements, token, nil
}

// UpdateMovementBalanceInTx rewrites one movement's running-balance snapshot.
func (r *PgxOperationRepository) UpdateMovementBalanceInTx(ctx context.Context, tx pgx.Tx, movementID string, balance decimal.Decimal) error {
	query := `UPDATE operation_movements SET balance = $2 WHERE movement_id = $1;`
	tag, err := tx.Exec(ctx, query, movementID, balance)
	if err != nil {
		return fmt.Errorf("failed to update balance of movement %s: %w", movementID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
