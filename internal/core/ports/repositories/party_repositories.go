package repositories

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
)

// PartyRepositoryFacade defines CRUD for the related-party registry
// (loan entities, agencies, providers).
type PartyRepositoryFacade interface {
	// SaveParty persists a new related party.
	SaveParty(ctx context.Context, party domain.RelatedParty) error

	// FindPartyByID retrieves a party of the given kind by id.
	FindPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.RelatedParty, error)

	// ListParties retrieves all parties of one kind, enabled first.
	ListParties(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]domain.RelatedParty, error)

	// UpdateParty updates a party's name.
	UpdateParty(ctx context.Context, party domain.RelatedParty) error

	// SetPartyEnabled flips the enabled flag.
	SetPartyEnabled(ctx context.Context, kind domain.PartyKind, partyID string, enabled bool, userID string, now time.Time) error
}
