package dto

import (
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaveDocumentRequest is the payload for creating or editing a financial
// document. Which optional references are required depends on the kind.
type SaveDocumentRequest struct {
	DocumentID string                `json:"documentID"` // Empty on create
	Kind       domain.DocumentKind   `json:"kind" binding:"required,documentkind"`
	Date       time.Time             `json:"date" binding:"required"`
	Currency   string                `json:"currency" binding:"required,iso4217"`
	Amount     decimal.Decimal       `json:"amount" binding:"required"`
	Status     domain.DocumentStatus `json:"status" binding:"required,oneof=DRAFT READY CANCELLED"`
	Detail     string                `json:"detail" binding:"max=500"`

	AccountID      *string          `json:"accountID,omitempty"`
	OtherAccountID *string          `json:"otherAccountID,omitempty"`
	OtherAmount    *decimal.Decimal `json:"otherAmount,omitempty"`

	LoanEntityID  *string `json:"loanEntityID,omitempty"`
	LoanAccountID *string `json:"loanAccountID,omitempty"`
	AgencyID      *string `json:"agencyID,omitempty"`
	ProviderID    *string `json:"providerID,omitempty"`
}

// ToDomainDocument maps the request onto a domain document for the save path.
func (r SaveDocumentRequest) ToDomainDocument() domain.FinancialDocument {
	return domain.FinancialDocument{
		DocumentID:     r.DocumentID,
		Kind:           r.Kind,
		Date:           r.Date,
		Currency:       r.Currency,
		Amount:         r.Amount,
		Status:         r.Status,
		Detail:         r.Detail,
		AccountID:      r.AccountID,
		OtherAccountID: r.OtherAccountID,
		OtherAmount:    r.OtherAmount,
		LoanEntityID:   r.LoanEntityID,
		LoanAccountID:  r.LoanAccountID,
		AgencyID:       r.AgencyID,
		ProviderID:     r.ProviderID,
	}
}

// DocumentResponse is the API representation of a financial document.
type DocumentResponse struct {
	DocumentID         string                `json:"documentID"`
	Kind               domain.DocumentKind   `json:"kind"`
	Name               string                `json:"name"`
	DocumentType       string                `json:"documentType"`
	Date               time.Time             `json:"date"`
	Currency           string                `json:"currency"`
	Amount             decimal.Decimal       `json:"amount"`
	Status             domain.DocumentStatus `json:"status"`
	MatchedAmount      decimal.Decimal       `json:"matchedAmount"`
	Detail             string                `json:"detail,omitempty"`
	AccountID          *string               `json:"accountID,omitempty"`
	OtherAccountID     *string               `json:"otherAccountID,omitempty"`
	OtherAmount        *decimal.Decimal      `json:"otherAmount,omitempty"`
	LoanEntityID       *string               `json:"loanEntityID,omitempty"`
	LoanAccountID      *string               `json:"loanAccountID,omitempty"`
	AgencyID           *string               `json:"agencyID,omitempty"`
	ProviderID         *string               `json:"providerID,omitempty"`
	CurrentOperationID *string               `json:"currentOperationID,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	LastUpdatedAt      time.Time             `json:"lastUpdatedAt"`
}

// ToDocumentResponse maps a domain document to its API representation.
func ToDocumentResponse(d *domain.FinancialDocument) DocumentResponse {
	return DocumentResponse{
		DocumentID:         d.DocumentID,
		Kind:               d.Kind,
		Name:               d.Name,
		DocumentType:       d.DocumentType,
		Date:               d.Date,
		Currency:           d.Currency,
		Amount:             d.Amount,
		Status:             d.Status,
		MatchedAmount:      d.MatchedAmount,
		Detail:             d.Detail,
		AccountID:          d.AccountID,
		OtherAccountID:     d.OtherAccountID,
		OtherAmount:        d.OtherAmount,
		LoanEntityID:       d.LoanEntityID,
		LoanAccountID:      d.LoanAccountID,
		AgencyID:           d.AgencyID,
		ProviderID:         d.ProviderID,
		CurrentOperationID: d.CurrentOperationID,
		CreatedAt:          d.CreatedAt,
		LastUpdatedAt:      d.LastUpdatedAt,
	}
}

// ToDocumentResponses maps a slice of domain documents.
func ToDocumentResponses(docs []domain.FinancialDocument) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return out
}

// ListDocumentsResponse is a page of documents plus the next-page token.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// StatusChangeResponse is one row of a document's status audit trail.
type StatusChangeResponse struct {
	UserID    string                 `json:"userID"`
	OldStatus *domain.DocumentStatus `json:"oldStatus,omitempty"`
	NewStatus domain.DocumentStatus  `json:"newStatus"`
	CreatedAt time.Time              `json:"createdAt"`
}
