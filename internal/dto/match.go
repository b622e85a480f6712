package dto

import (
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaveMatchRequest is the payload for creating a match or changing its amount.
type SaveMatchRequest struct {
	MatchID          string             `json:"matchID"` // Empty on create
	Family           domain.MatchFamily `json:"family" binding:"required,oneof=LOAN_ENTITY LOAN_ACCOUNT AGENCY PROVIDER"`
	CreditDocumentID string             `json:"creditDocumentID" binding:"required,uuid"`
	DebitDocumentID  string             `json:"debitDocumentID" binding:"required,uuid"`
	Amount           decimal.Decimal    `json:"amount" binding:"required"`
}

// ToDomainMatch maps the request onto a domain match.
func (r SaveMatchRequest) ToDomainMatch() domain.Match {
	return domain.Match{
		MatchID:          r.MatchID,
		Family:           r.Family,
		CreditDocumentID: r.CreditDocumentID,
		DebitDocumentID:  r.DebitDocumentID,
		Amount:           r.Amount,
	}
}

// MatchResponse is the API representation of a match.
type MatchResponse struct {
	MatchID          string             `json:"matchID"`
	Family           domain.MatchFamily `json:"family"`
	CreditDocumentID string             `json:"creditDocumentID"`
	DebitDocumentID  string             `json:"debitDocumentID"`
	Amount           decimal.Decimal    `json:"amount"`
	CreatedAt        time.Time          `json:"createdAt"`
	LastUpdatedAt    time.Time          `json:"lastUpdatedAt"`
}

// ToMatchResponse maps a domain match to its API representation.
func ToMatchResponse(m *domain.Match) MatchResponse {
	return MatchResponse{
		MatchID:          m.MatchID,
		Family:           m.Family,
		CreditDocumentID: m.CreditDocumentID,
		DebitDocumentID:  m.DebitDocumentID,
		Amount:           m.Amount,
		CreatedAt:        m.CreatedAt,
		LastUpdatedAt:    m.LastUpdatedAt,
	}
}

// SummaryResponse is the API representation of a related-party aggregate.
type SummaryResponse struct {
	Family        domain.MatchFamily `json:"family"`
	PartyID       string             `json:"partyID"`
	Currency      string             `json:"currency,omitempty"`
	CreditAmount  decimal.Decimal    `json:"creditAmount"`
	DebitAmount   decimal.Decimal    `json:"debitAmount"`
	MatchedAmount decimal.Decimal    `json:"matchedAmount"`
}

// ToSummaryResponse maps a domain summary to its API representation.
func ToSummaryResponse(s *domain.PartySummary) SummaryResponse {
	return SummaryResponse{
		Family:        s.Family,
		PartyID:       s.PartyID,
		Currency:      s.Currency,
		CreditAmount:  s.CreditAmount,
		DebitAmount:   s.DebitAmount,
		MatchedAmount: s.MatchedAmount,
	}
}
