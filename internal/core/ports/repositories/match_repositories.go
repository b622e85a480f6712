package repositories

import (
	"context"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MatchReader defines read operations for matches.
type MatchReader interface {
	// FindMatchByID retrieves a match by its unique identifier.
	FindMatchByID(ctx context.Context, matchID string) (*domain.Match, error)

	// ListMatchesByDocument retrieves all matches referencing the document on either side.
	ListMatchesByDocument(ctx context.Context, documentID string) ([]domain.Match, error)
}

// MatchTransactionSupport defines the lock-then-mutate operations used by the
// matching service inside its transactions.
type MatchTransactionSupport interface {
	// FindMatchByIDForUpdate selects a match and locks its row for update.
	FindMatchByIDForUpdate(ctx context.Context, tx pgx.Tx, matchID string) (*domain.Match, error)

	// FindMatchByPairForUpdate finds the match for a (credit, debit) document
	// pair, locking it. Returns apperrors.ErrNotFound when none exists.
	FindMatchByPairForUpdate(ctx context.Context, tx pgx.Tx, creditDocumentID, debitDocumentID string) (*domain.Match, error)

	// SaveMatchInTx inserts or updates a match within the caller's transaction.
	SaveMatchInTx(ctx context.Context, tx pgx.Tx, match domain.Match, isNew bool) error

	// DeleteMatchInTx removes a match.
	DeleteMatchInTx(ctx context.Context, tx pgx.Tx, matchID string) error

	// SumMatchedForDocumentInTx recomputes the sum of active match amounts
	// referencing the document on either side.
	SumMatchedForDocumentInTx(ctx context.Context, tx pgx.Tx, documentID string) (decimal.Decimal, error)
}

// MatchRepositoryFacade combines all match-related repository interfaces.
type MatchRepositoryFacade interface {
	MatchReader
	MatchTransactionSupport
}

// MatchRepositoryWithTx extends MatchRepositoryFacade with transaction capabilities.
type MatchRepositoryWithTx interface {
	MatchRepositoryFacade
	TransactionManager
}
