package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/atlastours/backoffice/internal/models"
	"github.com/atlastours/backoffice/internal/utils/pagination"
)

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a new repository for financial documents.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

func toModelDocument(d domain.FinancialDocument) models.FinancialDocument {
	return models.FinancialDocument{
		DocumentID:         d.DocumentID,
		Kind:               string(d.Kind),
		Name:               d.Name,
		DocumentType:       d.DocumentType,
		Date:               d.Date,
		Currency:           d.Currency,
		Amount:             d.Amount,
		Status:             string(d.Status),
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
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainDocument(m models.FinancialDocument) domain.FinancialDocument {
	return domain.FinancialDocument{
		DocumentID:         m.DocumentID,
		Kind:               domain.DocumentKind(m.Kind),
		Name:               m.Name,
		DocumentType:       m.DocumentType,
		Date:               m.Date,
		Currency:           m.Currency,
		Amount:             m.Amount,
		Status:             domain.DocumentStatus(m.Status),
		MatchedAmount:      m.MatchedAmount,
		Detail:             m.Detail,
		AccountID:          m.AccountID,
		OtherAccountID:     m.OtherAccountID,
		OtherAmount:        m.OtherAmount,
		LoanEntityID:       m.LoanEntityID,
		LoanAccountID:      m.LoanAccountID,
		AgencyID:           m.AgencyID,
		ProviderID:         m.ProviderID,
		CurrentOperationID: m.CurrentOperationID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const documentColumns = `document_id, kind, name, document_type, date, currency, amount, status, matched_amount, detail,
	account_id, other_account_id, other_amount, loan_entity_id, loan_account_id, agency_id, provider_id,
	current_operation_id, created_at, created_by, last_updated_at, last_updated_by`

func scanDocument(row pgx.Row) (models.FinancialDocument, error) {
	var m models.FinancialDocument
	err := row.Scan(
		&m.DocumentID,
		&m.Kind,
		&m.Name,
		&m.DocumentType,
		&m.Date,
		&m.Currency,
		&m.Amount,
		&m.Status,
		&m.MatchedAmount,
		&m.Detail,
		&m.AccountID,
		&m.OtherAccountID,
		&m.OtherAmount,
		&m.LoanEntityID,
		&m.LoanAccountID,
		&m.AgencyID,
		&m.ProviderID,
		&m.CurrentOperationID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindDocumentByID retrieves a document by its ID.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.FinancialDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM financial_documents WHERE document_id = $1;`

	m, err := scanDocument(r.Pool.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find document by ID %s: %w", documentID, err)
	}

	d := toDomainDocument(m)
	return &d, nil
}

// FindDocumentByIDForUpdate selects a document and locks its row.
func (r *PgxDocumentRepository) FindDocumentByIDForUpdate(ctx context.Context, tx pgx.Tx, documentID string) (*domain.FinancialDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM financial_documents WHERE document_id = $1 FOR UPDATE;`

	m, err := scanDocument(tx.QueryRow(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock document %s: %w", documentID, err)
	}

	d := toDomainDocument(m)
	return &d, nil
}

// ListDocuments retrieves a filtered page of documents, newest first, using
// token-based pagination keyed on (created_at, document_id).
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error) {
	query := `SELECT ` + documentColumns + ` FROM financial_documents WHERE 1=1`
	args := []any{}

	appendArg := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.Kind != nil {
		appendArg(` AND kind = $%d`, string(*filter.Kind))
	}
	if filter.Status != nil {
		appendArg(` AND status = $%d`, string(*filter.Status))
	}
	if filter.PartyID != nil {
		appendArg(` AND (loan_entity_id = $%[1]d OR loan_account_id = $%[1]d OR agency_id = $%[1]d OR provider_id = $%[1]d)`, *filter.PartyID)
	}
	if nextToken != nil && *nextToken != "" {
		ts, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(` AND (created_at, document_id) < ($%d, $%d)`, len(args)-1, len(args))
	}

	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, document_id DESC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.FinancialDocument, 0, limit+1)
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, toDomainDocument(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	var token *string
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[len(docs)-1]
		t := pagination.EncodeToken(last.CreatedAt, last.DocumentID)
		token = &t
	}
	return docs, token, nil
}

// SaveDocumentInTx inserts or updates a document within the caller's transaction.
func (r *PgxDocumentRepository) SaveDocumentInTx(ctx context.Context, tx pgx.Tx, doc domain.FinancialDocument, isNew bool) error {
	m := toModelDocument(doc)

	if isNew {
		query := `
			INSERT INTO financial_documents (` + documentColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
		`
		_, err := tx.Exec(ctx, query,
			m.DocumentID, m.Kind, m.Name, m.DocumentType, m.Date, m.Currency, m.Amount, m.Status, m.MatchedAmount, m.Detail,
			m.AccountID, m.OtherAccountID, m.OtherAmount, m.LoanEntityID, m.LoanAccountID, m.AgencyID, m.ProviderID,
			m.CurrentOperationID, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: document %s already exists", apperrors.ErrDuplicate, m.DocumentID)
			}
			return fmt.Errorf("failed to insert document %s: %w", m.DocumentID, err)
		}
		return nil
	}

	query := `
		UPDATE financial_documents
		SET name = $2, document_type = $3, date = $4, currency = $5, amount = $6, status = $7,
			matched_amount = $8, detail = $9, account_id = $10, other_account_id = $11, other_amount = $12,
			loan_entity_id = $13, loan_account_id = $14, agency_id = $15, provider_id = $16,
			current_operation_id = $17, last_updated_at = $18, last_updated_by = $19
		WHERE document_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.DocumentID, m.Name, m.DocumentType, m.Date, m.Currency, m.Amount, m.Status,
		m.MatchedAmount, m.Detail, m.AccountID, m.OtherAccountID, m.OtherAmount,
		m.LoanEntityID, m.LoanAccountID, m.AgencyID, m.ProviderID,
		m.CurrentOperationID, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", m.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AddStatusHistoryInTx appends one status-transition audit row.
func (r *PgxDocumentRepository) AddStatusHistoryInTx(ctx context.Context, tx pgx.Tx, change portsrepo.DocumentStatusChange) error {
	var oldStatus *string
	if change.OldStatus != nil {
		s := string(*change.OldStatus)
		oldStatus = &s
	}
	query := `
		INSERT INTO document_status_history (history_id, document_id, user_id, old_status, new_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := tx.Exec(ctx, query,
		change.HistoryID, change.DocumentID, change.UserID, oldStatus, string(change.NewStatus), change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert status history for document %s: %w", change.DocumentID, err)
	}
	return nil
}

// ListStatusHistory retrieves the status audit trail of a document, oldest first.
func (r *PgxDocumentRepository) ListStatusHistory(ctx context.Context, documentID string) ([]portsrepo.DocumentStatusChange, error) {
	query := `
		SELECT history_id, document_id, user_id, old_status, new_status, created_at
		FROM document_status_history
		WHERE document_id = $1
		ORDER BY created_at ASC, history_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history of document %s: %w", documentID, err)
	}
	defer rows.Close()

	var changes []portsrepo.DocumentStatusChange
	for rows.Next() {
		var m models.DocumentStatusChange
		if err := rows.Scan(&m.HistoryID, &m.DocumentID, &m.UserID, &m.OldStatus, &m.NewStatus, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history row: %w", err)
		}
		change := portsrepo.DocumentStatusChange{
			HistoryID:  m.HistoryID,
			DocumentID: m.DocumentID,
			UserID:     m.UserID,
			NewStatus:  domain.DocumentStatus(m.NewStatus),
			CreatedAt:  m.CreatedAt,
		}
		if m.OldStatus != nil {
			old := domain.DocumentStatus(*m.OldStatus)
			change.OldStatus = &old
		}
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history rows: %w", err)
	}
	return changes, nil
}

// AddDocumentOperationInTx links a ledger operation the document caused.
func (r *PgxDocumentRepository) AddDocumentOperationInTx(ctx context.Context, tx pgx.Tx, documentID, operationID string) error {
	query := `
		INSERT INTO document_operations (document_id, operation_id, created_at)
		VALUES ($1, $2, $3);
	`
	if _, err := tx.Exec(ctx, query, documentID, operationID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to link operation %s to document %s: %w", operationID, documentID, err)
	}
	return nil
}

// ListOperationIDs retrieves the ids of all ledger operations a document has
// caused, in creation order.
func (r *PgxDocumentRepository) ListOperationIDs(ctx context.Context, documentID string) ([]string, error) {
	query := `
		SELECT operation_id
		FROM document_operations
		WHERE document_id = $1
		ORDER BY created_at ASC, operation_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations of document %s: %w", documentID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan operation id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation id rows: %w", err)
	}
	return ids, nil
}

// SetMatchedAmountInTx overwrites a document's matched_amount.
func (r *PgxDocumentRepository) SetMatchedAmountInTx(ctx context.Context, tx pgx.Tx, documentID string, matched decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE financial_documents
		SET matched_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = $1;
	`
	tag, err := tx.Exec(ctx, query, documentID, matched, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set matched amount of document %s: %w", documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
