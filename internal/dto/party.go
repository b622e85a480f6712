package dto

import (
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
)

// CreatePartyRequest is the payload for creating a related party.
type CreatePartyRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// UpdatePartyRequest is the payload for renaming a related party.
type UpdatePartyRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// PartyResponse is the API representation of a related party.
type PartyResponse struct {
	PartyID   string           `json:"partyID"`
	Kind      domain.PartyKind `json:"kind"`
	Name      string           `json:"name"`
	Enabled   bool             `json:"enabled"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ToPartyResponse maps a domain party to its API representation.
func ToPartyResponse(p *domain.RelatedParty) PartyResponse {
	return PartyResponse{
		PartyID:   p.PartyID,
		Kind:      p.Kind,
		Name:      p.Name,
		Enabled:   p.Enabled,
		CreatedAt: p.CreatedAt,
	}
}
