package services

import (
	"context"

	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
)

// FinanceSvcFacade drives the financial-document lifecycle: every create or
// edit funnels through SaveDocument, which keeps the ledger mirroring the
// document's Ready state via compensating operations.
type FinanceSvcFacade interface {
	// SaveDocument validates, derives, reconciles the ledger, persists, and
	// audits one document save. An empty DocumentID creates; otherwise the
	// stored version is locked and edited. Document deletion does not exist.
	SaveDocument(ctx context.Context, userID string, doc domain.FinancialDocument) (*domain.FinancialDocument, error)

	// GetDocument retrieves a document by id.
	GetDocument(ctx context.Context, documentID string) (*domain.FinancialDocument, error)

	// ListDocuments retrieves a filtered, paginated list of documents.
	ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error)

	// ListDocumentHistory retrieves the status audit trail.
	ListDocumentHistory(ctx context.Context, documentID string) ([]portsrepo.DocumentStatusChange, error)

	// ListDocumentOperations retrieves every ledger operation the document caused.
	ListDocumentOperations(ctx context.Context, documentID string) ([]domain.Operation, error)
}
