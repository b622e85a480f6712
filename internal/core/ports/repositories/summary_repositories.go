package repositories

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// SummaryDelta is the set of adjustments applied to one summary row. Zero
// fields are no-ops.
type SummaryDelta struct {
	Credit  decimal.Decimal
	Debit   decimal.Decimal
	Matched decimal.Decimal
}

// SummaryReader defines read operations for related-party summaries.
type SummaryReader interface {
	// FindSummary retrieves the summary row for a party identity, or
	// apperrors.ErrNotFound when no document has contributed yet.
	FindSummary(ctx context.Context, family domain.MatchFamily, partyID, currency string) (*domain.PartySummary, error)

	// ListSummariesByParty retrieves all currency rows for one party.
	ListSummariesByParty(ctx context.Context, family domain.MatchFamily, partyID string) ([]domain.PartySummary, error)
}

// SummaryTransactionSupport defines the lock-then-mutate operations used by
// the finance and matching services inside their transactions.
type SummaryTransactionSupport interface {
	// GetOrCreateSummaryForUpdate loads the summary row for the identity,
	// creating it (zeroed) when absent, and locks it for update. The unique
	// constraint on (family, party, currency) is the backstop against two
	// first-contributors racing to create duplicates.
	GetOrCreateSummaryForUpdate(ctx context.Context, tx pgx.Tx, family domain.MatchFamily, partyID, currency, userID string, now time.Time) (*domain.PartySummary, error)

	// ApplySummaryDeltaInTx adjusts the locked summary row's running totals.
	ApplySummaryDeltaInTx(ctx context.Context, tx pgx.Tx, summaryID string, delta SummaryDelta, userID string, now time.Time) error
}

// SummaryRepositoryFacade combines all summary-related repository interfaces.
type SummaryRepositoryFacade interface {
	SummaryReader
	SummaryTransactionSupport
}
