package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/atlastours/backoffice/internal/models"
)

type PgxSummaryRepository struct {
	BaseRepository
}

// newPgxSummaryRepository creates a new repository for party summaries.
func newPgxSummaryRepository(pool *pgxpool.Pool) portsrepo.SummaryRepositoryFacade {
	return &PgxSummaryRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.SummaryRepositoryFacade = (*PgxSummaryRepository)(nil)

func toDomainSummary(m models.PartySummary) domain.PartySummary {
	return domain.PartySummary{
		SummaryID:     m.SummaryID,
		Family:        domain.MatchFamily(m.Family),
		PartyID:       m.PartyID,
		Currency:      m.Currency,
		CreditAmount:  m.CreditAmount,
		DebitAmount:   m.DebitAmount,
		MatchedAmount: m.MatchedAmount,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const summaryColumns = `summary_id, family, party_id, currency, credit_amount, debit_amount, matched_amount, created_at, created_by, last_updated_at, last_updated_by`

func scanSummary(row pgx.Row) (models.PartySummary, error) {
	var m models.PartySummary
	err := row.Scan(
		&m.SummaryID,
		&m.Family,
		&m.PartyID,
		&m.Currency,
		&m.CreditAmount,
		&m.DebitAmount,
		&m.MatchedAmount,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindSummary retrieves the summary row for a party identity.
func (r *PgxSummaryRepository) FindSummary(ctx context.Context, family domain.MatchFamily, partyID, currency string) (*domain.PartySummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM party_summaries
		WHERE family = $1 AND party_id = $2 AND currency = $3;
	`
	m, err := scanSummary(r.Pool.QueryRow(ctx, query, string(family), partyID, currency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find summary for party %s: %w", partyID, err)
	}

	d := toDomainSummary(m)
	return &d, nil
}

// ListSummariesByParty retrieves all currency rows for one party.
func (r *PgxSummaryRepository) ListSummariesByParty(ctx context.Context, family domain.MatchFamily, partyID string) ([]domain.PartySummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM party_summaries
		WHERE family = $1 AND party_id = $2
		ORDER BY currency ASC;
	`
	rows, err := r.Pool.Query(ctx, query, string(family), partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries of party %s: %w", partyID, err)
	}
	defer rows.Close()

	var summaries []domain.PartySummary
	for rows.Next() {
		m, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summaries = append(summaries, toDomainSummary(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return summaries, nil
}

// GetOrCreateSummaryForUpdate loads the summary row for the identity,
// creating a zeroed row when absent, and locks it. The insert uses ON
// CONFLICT DO NOTHING so two first-contributors race safely; the subsequent
// locked select sees whichever row won.
func (r *PgxSummaryRepository) GetOrCreateSummaryForUpdate(ctx context.Context, tx pgx.Tx, family domain.MatchFamily, partyID, currency, userID string, now time.Time) (*domain.PartySummary, error) {
	insert := `
		INSERT INTO party_summaries (summary_id, family, party_id, currency, credit_amount, debit_amount, matched_amount, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, 0, 0, 0, $5, $6, $5, $6)
		ON CONFLICT (family, party_id, currency) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, insert, uuid.NewString(), string(family), partyID, currency, now, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure summary for party %s: %w", partyID, err)
	}

	query := `
		SELECT ` + summaryColumns + `
		FROM party_summaries
		WHERE family = $1 AND party_id = $2 AND currency = $3
		FOR UPDATE;
	`
	m, err := scanSummary(tx.QueryRow(ctx, query, string(family), partyID, currency))
	if err != nil {
		return nil, fmt.Errorf("failed to lock summary for party %s: %w", partyID, err)
	}

	d := toDomainSummary(m)
	return &d, nil
}

// ApplySummaryDeltaInTx adjusts the locked summary row's running totals.
func (r *PgxSummaryRepository) ApplySummaryDeltaInTx(ctx context.Context, tx pgx.Tx, summaryID string, delta portsrepo.SummaryDelta, userID string, now time.Time) error {
	query := `
		UPDATE party_summaries
		SET credit_amount = credit_amount + $2,
			debit_amount = debit_amount + $3,
			matched_amount = matched_amount + $4,
			last_updated_at = $5,
			last_updated_by = $6
		WHERE summary_id = $1;
	`
	tag, err := tx.Exec(ctx, query, summaryID, delta.Credit, delta.Debit, delta.Matched, now, userID)
	if err != nil {
		return fmt.Errorf("failed to apply delta to summary %s: %w", summaryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
