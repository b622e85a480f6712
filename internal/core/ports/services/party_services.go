package services

import (
	"context"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/atlastours/backoffice/internal/dto"
)

// PartySvcFacade manages the related-party registry (loan entities,
// agencies, providers).
type PartySvcFacade interface {
	// CreateParty persists a new related party.
	CreateParty(ctx context.Context, kind domain.PartyKind, req dto.CreatePartyRequest, creatorUserID string) (*domain.RelatedParty, error)

	// GetPartyByID retrieves a party of the given kind.
	GetPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.RelatedParty, error)

	// ListParties retrieves parties of one kind.
	ListParties(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]domain.RelatedParty, error)

	// UpdateParty renames a party.
	UpdateParty(ctx context.Context, kind domain.PartyKind, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.RelatedParty, error)

	// SetPartyEnabled enables or disables a party.
	SetPartyEnabled(ctx context.Context, kind domain.PartyKind, partyID string, enabled bool, userID string) error

	// ListSummaries retrieves the per-currency aggregates for a party.
	ListSummaries(ctx context.Context, family domain.MatchFamily, partyID string) ([]domain.PartySummary, error)
}
