package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

type partyService struct {
	partyRepo   portsrepo.PartyRepositoryFacade
	summaryRepo portsrepo.SummaryRepositoryFacade
}

// NewPartyService creates the related-party registry service.
func NewPartyService(partyRepo portsrepo.PartyRepositoryFacade, summaryRepo portsrepo.SummaryRepositoryFacade) portssvc.PartySvcFacade {
	return &partyService{partyRepo: partyRepo, summaryRepo: summaryRepo}
}

var _ portssvc.PartySvcFacade = (*partyService)(nil)

func (s *partyService) CreateParty(ctx context.Context, kind domain.PartyKind, req dto.CreatePartyRequest, creatorUserID string) (*domain.RelatedParty, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	party := domain.RelatedParty{
		PartyID: uuid.NewString(),
		Kind:    kind,
		Name:    req.Name,
		Enabled: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", string(kind), err)
	}

	logger.Info("Related party created",
		slog.String("party_id", party.PartyID),
		slog.String("kind", string(kind)))
	return &party, nil
}

func (s *partyService) GetPartyByID(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.RelatedParty, error) {
	return s.partyRepo.FindPartyByID(ctx, kind, partyID)
}

func (s *partyService) ListParties(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]domain.RelatedParty, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.partyRepo.ListParties(ctx, kind, limit, offset)
}

func (s *partyService) UpdateParty(ctx context.Context, kind domain.PartyKind, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.RelatedParty, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, kind, partyID)
	if err != nil {
		return nil, err
	}

	party.Name = req.Name
	party.LastUpdatedAt = time.Now().UTC()
	party.LastUpdatedBy = userID

	if err := s.partyRepo.UpdateParty(ctx, *party); err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", string(kind), partyID, err)
	}
	return party, nil
}

func (s *partyService) SetPartyEnabled(ctx context.Context, kind domain.PartyKind, partyID string, enabled bool, userID string) error {
	if _, err := s.partyRepo.FindPartyByID(ctx, kind, partyID); err != nil {
		return err
	}
	return s.partyRepo.SetPartyEnabled(ctx, kind, partyID, enabled, userID, time.Now().UTC())
}

// ListSummaries retrieves the per-currency aggregates for a party.
func (s *partyService) ListSummaries(ctx context.Context, family domain.MatchFamily, partyID string) ([]domain.PartySummary, error) {
	return s.summaryRepo.ListSummariesByParty(ctx, family, partyID)
}
