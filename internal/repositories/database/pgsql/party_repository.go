package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/atlastours/backoffice/internal/models"
)

type PgxPartyRepository struct {
	BaseRepository
}

// newPgxPartyRepository creates a new repository for the related-party registry.
func newPgxPartyRepository(pool *pgxpool.Pool) portsrepo.PartyRepositoryFacade {
	return &PgxPartyRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

func toDomainParty(m models.RelatedParty) domain.RelatedParty {
	return domain.RelatedParty{
		PartyID: m.PartyID,
		Kind:    domain.PartyKind(m.Kind),
		Name:    m.Name,
		Enabled: m.Enabled,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const partyColumns = `party_id, kind, name, enabled, created_at, created_by, last_updated_at, last_updated_by`

func scanParty(row pgx.Row) (models.RelatedParty, error) {
	var m models.RelatedParty
	err := row.Scan(
		&m.PartyID,
		&m.Kind,
		&m.Name,
		&m.Enabled,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveParty inserts a new related party.
func (r *PgxPartyRepository) SaveParty(ctx context.Context, party domain.RelatedParty) error {
	query := `
		INSERT INTO related_parties (` + partyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		party.PartyID, string(party.Kind), party.Name, party.Enabled,
		party.CreatedAt, party.CreatedBy, party.LastUpdatedAt, party.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %q already exists", apperrors.ErrDuplicate, string(party.Kind), party.Name)
		}
		return fmt.Errorf("failed to save party %s: %w", party.PartyID, err)
	}
	return nil
}

// FindPartyByID retrieves a party of the given kind by id.
func (r *PgxPartyRepository) FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.RelatedParty, error) {
	query := `SELECT ` + partyColumns + ` FROM related_parties WHERE party_id = $1 AND kind = $2;`

	m, err := scanParty(r.Pool.QueryRow(ctx, query, partyID, string(kind)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s by ID %s: %w", string(kind), partyID, err)
	}

	d := toDomainParty(m)
	return &d, nil
}

// ListParties retrieves parties of one kind, enabled first.
func (r *PgxPartyRepository) ListParties(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]domain.RelatedParty, error) {
	query := `
		SELECT ` + partyColumns + `
		FROM related_parties
		WHERE kind = $1
		ORDER BY enabled DESC, name ASC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, string(kind), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s parties: %w", string(kind), err)
	}
	defer rows.Close()

	parties := make([]domain.RelatedParty, 0, limit)
	for rows.Next() {
		m, err := scanParty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan party row: %w", err)
		}
		parties = append(parties, toDomainParty(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating party rows: %w", err)
	}
	return parties, nil
}

// UpdateParty updates a party's name.
func (r *PgxPartyRepository) UpdateParty(ctx context.Context, party domain.RelatedParty) error {
	query := `
		UPDATE related_parties
		SET name = $3, last_updated_at = $4, last_updated_by = $5
		WHERE party_id = $1 AND kind = $2;
	`
	tag, err := r.Pool.Exec(ctx, query,
		party.PartyID, string(party.Kind), party.Name, party.LastUpdatedAt, party.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s %q already exists", apperrors.ErrDuplicate, string(party.Kind), party.Name)
		}
		return fmt.Errorf("failed to update party %s: %w", party.PartyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetPartyEnabled flips the enabled flag.
func (r *PgxPartyRepository) SetPartyEnabled(ctx context.Context, kind domain.PartyKind, partyID string, enabled bool, userID string, now time.Time) error {
	query := `
		UPDATE related_parties
		SET enabled = $3, last_updated_at = $4, last_updated_by = $5
		WHERE party_id = $1 AND kind = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, partyID, string(kind), enabled, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set enabled flag of party %s: %w", partyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
