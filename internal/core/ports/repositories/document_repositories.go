package repositories

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DocumentStatusChange is one row of the status audit trail.
type DocumentStatusChange struct {
	HistoryID  string
	DocumentID string
	UserID     string
	OldStatus  *domain.DocumentStatus // nil on the initial save
	NewStatus  domain.DocumentStatus
	CreatedAt  time.Time
}

// ListDocumentsFilter narrows document listings.
type ListDocumentsFilter struct {
	Kind    *domain.DocumentKind
	Status  *domain.DocumentStatus
	PartyID *string
}

// DocumentReader defines read operations for financial documents.
type DocumentReader interface {
	// FindDocumentByID retrieves a document by its unique identifier.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error)

	// ListDocuments retrieves a filtered, paginated list of documents, newest first.
	ListDocuments(ctx context.Context, filter ListDocumentsFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error)

	// ListStatusHistory retrieves the status audit trail of a document, oldest first.
	ListStatusHistory(ctx context.Context, documentID string) ([]DocumentStatusChange, error)

	// ListOperationIDs retrieves the ids of all ledger operations a document
	// has caused (reverts and reposts), in creation order.
	ListOperationIDs(ctx context.Context, documentID string) ([]string, error)
}

// DocumentTransactionSupport defines the lock-then-mutate operations used by
// the finance and matching services inside their transactions.
type DocumentTransactionSupport interface {
	// FindDocumentByIDForUpdate selects a document and locks its row for update.
	FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.FinancialDocument, error)

	// SaveDocumentInTx inserts or updates a document within the caller's transaction.
	SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.FinancialDocument, isNew bool) error

	// AddStatusHistoryInTx appends one status-transition audit row.
	AddStatusHistoryInTx(ctx context.Context, tx pgx.Tx, change DocumentStatusChange) error

	// AddDocumentOperationInTx links a ledger operation the document caused.
	AddDocumentOperationInTx(ctx context.Context, tx pgx.Tx, documentID, operationID string) error

	// SetMatchedAmountInTx overwrites a document's matched_amount.
	SetMatchedAmountInTx(ctx context.Context, tx pgx.Tx, documentID string, matched decimal.Decimal, userID string, now time.Time) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentTransactionSupport
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
