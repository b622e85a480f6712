package services

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// MatchingSvcFacade links credit and debit documents and maintains the
// per-related-party aggregates. It never posts ledger movements itself.
type MatchingSvcFacade interface {
	// SaveMatch creates a match or changes an existing match's amount,
	// re-deriving both documents' matched totals and the party summary.
	SaveMatch(ctx context.Context, userID string, match domain.Match) (*domain.Match, error)

	// DeleteMatch removes a match and rolls its amount out of both documents
	// and the party summary.
	DeleteMatch(ctx context.Context, userID string, matchID string) error

	// GetMatch retrieves a match by id.
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)

	// ListMatchesByDocument retrieves all matches touching a document.
	ListMatchesByDocument(ctx context.Context, documentID string) ([]domain.Match, error)

	// GetSummary retrieves the aggregate row for a party identity.
	GetSummary(ctx context.Context, family domain.MatchFamily, partyID, currency string) (*domain.PartySummary, error)

	// ValidateMatchedDocumentEdit rejects a pending document edit that would
	// invalidate the document's active matches. Pure check, no mutation;
	// called by the finance service before touching anything.
	ValidateMatchedDocumentEdit(old, updated *domain.FinancialDocument) error

	// ApplyDocumentSummary maintains the credit/debit side of the party
	// aggregate for one document save, given the previous persisted state
	// (nil for a first save). Runs inside the caller's transaction; the
	// summary rows involved are locked last, immediately before updating.
	ApplyDocumentSummary(ctx context.Context, tx pgx.Tx, old, updated *domain.FinancialDocument, userID string, now time.Time) error
}
