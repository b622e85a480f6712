package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/atlastours/backoffice/internal/models"
)

type PgxMatchRepository struct {
	BaseRepository
}

// newPgxMatchRepository creates a new repository for matches.
func newPgxMatchRepository(pool *pgxpool.Pool) portsrepo.MatchRepositoryWithTx {
	return &PgxMatchRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.MatchRepositoryWithTx = (*PgxMatchRepository)(nil)

func toDomainMatch(m models.Match) domain.Match {
	return domain.Match{
		MatchID:          m.MatchID,
		Family:           domain.MatchFamily(m.Family),
		CreditDocumentID: m.CreditDocumentID,
		DebitDocumentID:  m.DebitDocumentID,
		Amount:           m.Amount,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const matchColumns = `match_id, family, credit_document_id, debit_document_id, amount, created_at, created_by, last_updated_at, last_updated_by`

func scanMatch(row pgx.Row) (models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.MatchID,
		&m.Family,
		&m.CreditDocumentID,
		&m.DebitDocumentID,
		&m.Amount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindMatchByID retrieves a match by its ID.
func (r *PgxMatchRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1;`

	m, err := scanMatch(r.Pool.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match by ID %s: %w", matchID, err)
	}

	d := toDomainMatch(m)
	return &d, nil
}

// ListMatchesByDocument retrieves all matches referencing the document on
// either side, newest first.
func (r *PgxMatchRepository) ListMatchesByDocument(ctx context.Context, documentID string) ([]domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE credit_document_id = $1 OR debit_document_id = $1
		ORDER BY created_at DESC, match_id DESC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches of document %s: %w", documentID, err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, toDomainMatch(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

// FindMatchByIDForUpdate selects a match and locks its row.
func (r *PgxMatchRepository) FindMatchByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE match_id = $1 FOR UPDATE;`

	m, err := scanMatch(tx.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}

	d := toDomainMatch(m)
	return &d, nil
}

// FindMatchByPairForUpdate finds the match for a (credit, debit) pair, locking it.
func (r *PgxMatchRepository) FindMatchByPairForUpdate(ctx context.Context, tx pgx.Tx, creditDocumentID, debitDocumentID string) (*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE credit_document_id = $1 AND debit_document_id = $2
		FOR UPDATE;
	`
	m, err := scanMatch(tx.QueryRow(ctx, query, creditDocumentID, debitDocumentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock match for pair (%s, %s): %w", creditDocumentID, debitDocumentID, err)
	}

	d := toDomainMatch(m)
	return &d, nil
}

// SaveMatchInTx inserts or updates a match within the caller's transaction.
func (r *PgxMatchRepository) SaveMatchInTx(ctx context.Context, tx pgx.Tx, match domain.Match, isNew bool) error {
	if isNew {
		query := `
			INSERT INTO matches (` + matchColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`
		_, err := tx.Exec(ctx, query,
			match.MatchID, string(match.Family), match.CreditDocumentID, match.DebitDocumentID, match.Amount,
			match.CreatedAt, match.CreatedBy, match.LastUpdatedAt, match.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: documents %s and %s are already matched",
					apperrors.ErrDuplicate, match.CreditDocumentID, match.DebitDocumentID)
			}
			return fmt.Errorf("failed to insert match %s: %w", match.MatchID, err)
		}
		return nil
	}

	query := `
		UPDATE matches
		SET amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE match_id = $1;
	`
	tag, err := tx.Exec(ctx, query, match.MatchID, match.Amount, match.LastUpdatedAt, match.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", match.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteMatchInTx removes a match.
func (r *PgxMatchRepository) DeleteMatchInTx(ctx context.Context, tx pgx.Tx, matchID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM matches WHERE match_id = $1;`, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SumMatchedForDocumentInTx recomputes the sum of match amounts referencing
// the document on either side.
func (r *PgxMatchRepository) SumMatchedForDocumentInTx(ctx context.Context, tx pgx.Tx, documentID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM matches
		WHERE credit_document_id = $1 OR debit_document_id = $1;
	`
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, query, documentID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum matches of document %s: %w", documentID, err)
	}
	return sum, nil
}
