package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/middleware"
)

// financeService owns the document lifecycle. All creates and edits funnel
// through SaveDocument, which reconciles the ledger against the document's
// Ready state with compensating operations.
type financeService struct {
	accountRepo   portsrepo.AccountRepositoryWithTx
	documentRepo  portsrepo.DocumentRepositoryWithTx
	operationRepo portsrepo.OperationRepositoryFacade
	partyRepo     portsrepo.PartyRepositoryFacade
	accountingSvc portssvc.AccountingSvcFacade
	matchingSvc   portssvc.MatchingSvcFacade
}

// NewFinanceService creates the finance service.
func NewFinanceService(
	accountRepo portsrepo.AccountRepositoryWithTx,
	documentRepo portsrepo.DocumentRepositoryWithTx,
	operationRepo portsrepo.OperationRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
	accountingSvc portssvc.AccountingSvcFacade,
	matchingSvc portssvc.MatchingSvcFacade,
) portssvc.FinanceSvcFacade {
	return &financeService{
		accountRepo:   accountRepo,
		documentRepo:  documentRepo,
		operationRepo: operationRepo,
		partyRepo:     partyRepo,
		accountingSvc: accountingSvc,
		matchingSvc:   matchingSvc,
	}
}

var _ portssvc.FinanceSvcFacade = (*financeService)(nil)

// partyKindForFamily maps a match family to its registry. The loan-account
// family has no registry entry; its parties are accounts.
func partyKindForFamily(family domain.MatchFamily) (domain.PartyKind, bool) {
	switch family {
	case domain.MatchFamilyLoanEntity:
		return domain.PartyLoanEntity, true
	case domain.MatchFamilyAgency:
		return domain.PartyAgency, true
	case domain.MatchFamilyProvider:
		return domain.PartyProvider, true
	}
	return "", false
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func decPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// validateDocumentInput checks the structural rules of the kind: status,
// amounts, and the references the kind requires. Amounts are normalized to
// 2 decimal places in place.
func validateDocumentInput(doc *domain.FinancialDocument) (domain.KindSpec, error) {
	spec, ok := doc.Kind.Spec()
	if !ok {
		return domain.KindSpec{}, fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, string(doc.Kind))
	}
	if !doc.Status.Valid() {
		return domain.KindSpec{}, fmt.Errorf("%w: unknown document status %q", apperrors.ErrValidation, string(doc.Status))
	}
	if doc.Currency == "" {
		return domain.KindSpec{}, fmt.Errorf("%w: currency is required", apperrors.ErrValidation)
	}
	if doc.Date.IsZero() {
		return domain.KindSpec{}, fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}

	doc.Amount = doc.Amount.RoundBank(2)
	if doc.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.KindSpec{}, fmt.Errorf("%w: got %s", ErrAmountRequired, doc.Amount.String())
	}

	if spec.PostsToLedger && (doc.AccountID == nil || *doc.AccountID == "") {
		return domain.KindSpec{}, fmt.Errorf("%w: %s posts to the ledger", ErrAccountRequired, spec.Label)
	}
	if spec.TwoLegged {
		if doc.OtherAccountID == nil || *doc.OtherAccountID == "" {
			return domain.KindSpec{}, fmt.Errorf("%w: %s needs a counterpart account", ErrAccountRequired, spec.Label)
		}
		if *doc.OtherAccountID == *doc.AccountID {
			return domain.KindSpec{}, fmt.Errorf("%w: both legs reference the same account", apperrors.ErrValidation)
		}
	}
	switch spec.CurrencyRule {
	case domain.CurrencyRuleDifferentLegs:
		if doc.OtherAmount == nil {
			return domain.KindSpec{}, fmt.Errorf("%w: %s needs the counterpart amount", ErrAmountRequired, spec.Label)
		}
		rounded := doc.OtherAmount.RoundBank(2)
		doc.OtherAmount = &rounded
		if rounded.LessThanOrEqual(decimal.Zero) {
			return domain.KindSpec{}, fmt.Errorf("%w: got %s", ErrAmountRequired, rounded.String())
		}
	default:
		// Single-amount kinds carry exactly one figure.
		doc.OtherAmount = nil
	}

	if spec.MatchFamily != "" {
		if _, ok := doc.PartyID(); !ok {
			return domain.KindSpec{}, fmt.Errorf("%w: %s needs a related-party reference", apperrors.ErrValidation, spec.Label)
		}
	}
	return spec, nil
}

// ledgerFieldsChanged reports whether an edit touched any field that the
// posted operation depends on, forcing a revert and repost.
func ledgerFieldsChanged(old, updated *domain.FinancialDocument) bool {
	return !strPtrEqual(old.AccountID, updated.AccountID) ||
		!old.Amount.Equal(updated.Amount) ||
		!strPtrEqual(old.OtherAccountID, updated.OtherAccountID) ||
		!decPtrEqual(old.OtherAmount, updated.OtherAmount)
}

// lockAccounts row-locks the given accounts in sorted id order, merging them
// into the already-locked set. Missing ids are an error.
func (s *financeService) lockAccounts(ctx context.Context, tx pgx.Tx, locked map[string]*domain.Account, ids []string) error {
	var missing []string
	for _, id := range ids {
		if id == "" || locked[id] != nil {
			continue
		}
		if !slices.Contains(missing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)

	found, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, missing)
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	for _, id := range missing {
		acc, ok := found[id]
		if !ok {
			return apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", id))
		}
		a := acc
		locked[id] = &a
	}
	return nil
}

// validateAccountCurrencies enforces the kind's currency rule against the
// locked account rows.
func validateAccountCurrencies(spec domain.KindSpec, doc *domain.FinancialDocument, locked map[string]*domain.Account) error {
	if !spec.PostsToLedger {
		return nil
	}
	primary := locked[*doc.AccountID]
	if primary.Currency != doc.Currency {
		return fmt.Errorf("%w: document is %s, account %s is %s",
			ErrCurrencyMismatch, doc.Currency, primary.Name, primary.Currency)
	}
	if !spec.TwoLegged {
		return nil
	}
	other := locked[*doc.OtherAccountID]
	switch spec.CurrencyRule {
	case domain.CurrencyRuleSameLegs:
		if other.Currency != primary.Currency {
			return fmt.Errorf("%w: accounts %s (%s) and %s (%s) differ",
				ErrCurrencyMismatch, primary.Name, primary.Currency, other.Name, other.Currency)
		}
	case domain.CurrencyRuleDifferentLegs:
		if other.Currency == primary.Currency {
			return fmt.Errorf("%w: exchange legs share currency %s", ErrCurrencyMismatch, primary.Currency)
		}
	}
	return nil
}

// resolvePartyName loads the display name of the document's related party,
// verifying the reference exists. Loan-account parties are accounts.
func (s *financeService) resolvePartyName(ctx context.Context, spec domain.KindSpec, doc *domain.FinancialDocument) (string, error) {
	if spec.MatchFamily == "" {
		return "", nil
	}
	partyID, _ := doc.PartyID()
	if spec.MatchFamily == domain.MatchFamilyLoanAccount {
		acc, err := s.accountRepo.FindAccountByID(ctx, partyID)
		if err != nil {
			return "", fmt.Errorf("failed to find loan account %s: %w", partyID, err)
		}
		return acc.Name, nil
	}
	kind, _ := partyKindForFamily(spec.MatchFamily)
	party, err := s.partyRepo.FindPartyByID(ctx, kind, partyID)
	if err != nil {
		return "", fmt.Errorf("failed to find %s %s: %w", string(kind), partyID, err)
	}
	return party.Name, nil
}

// SaveDocument is the single write path for documents. Inside one
// transaction it locks the involved accounts (sorted, before the document
// row), validates, reverts and reposts the ledger as needed, regenerates the
// derived name, persists, audits the status transition, and maintains the
// party summary.
func (s *financeService) SaveDocument(ctx context.Context, userID string, doc domain.FinancialDocument) (*domain.FinancialDocument, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	spec, err := validateDocumentInput(&doc)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := s.documentRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.documentRepo.Rollback(ctx, tx)

	// Lock order: accounts first (one sorted batch), then the document row,
	// then (in ApplyDocumentSummary) the summary rows. On an edit the stored
	// accounts carry the revert, so they belong to the same batch as the new
	// ones; the stored ids come from an unlocked read taken before any lock.
	locked := make(map[string]*domain.Account)
	accountIDs := make([]string, 0, 4)
	if doc.AccountID != nil {
		accountIDs = append(accountIDs, *doc.AccountID)
	}
	if doc.OtherAccountID != nil {
		accountIDs = append(accountIDs, *doc.OtherAccountID)
	}

	isNew := doc.DocumentID == ""
	if !isNew {
		peek, err := s.documentRepo.FindDocumentByID(ctx, doc.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to find document %s: %w", doc.DocumentID, err)
		}
		if peek.AccountID != nil {
			accountIDs = append(accountIDs, *peek.AccountID)
		}
		if peek.OtherAccountID != nil {
			accountIDs = append(accountIDs, *peek.OtherAccountID)
		}
	}
	if err := s.lockAccounts(ctx, tx, locked, accountIDs); err != nil {
		return nil, err
	}

	var dbDoc *domain.FinancialDocument
	if !isNew {
		dbDoc, err = s.documentRepo.FindDocumentByIDForUpdate(ctx, tx, doc.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock document %s: %w", doc.DocumentID, err)
		}
		if dbDoc.Kind != doc.Kind {
			return nil, fmt.Errorf("%w: document kind cannot change (stored %s)", apperrors.ErrValidation, string(dbDoc.Kind))
		}
		// A concurrent edit may have moved the posting between the unlocked
		// read and the row lock; pick up any accounts it introduced.
		oldIDs := make([]string, 0, 2)
		if dbDoc.AccountID != nil {
			oldIDs = append(oldIDs, *dbDoc.AccountID)
		}
		if dbDoc.OtherAccountID != nil {
			oldIDs = append(oldIDs, *dbDoc.OtherAccountID)
		}
		if err := s.lockAccounts(ctx, tx, locked, oldIDs); err != nil {
			return nil, err
		}
	}

	if dbDoc != nil {
		doc.MatchedAmount = dbDoc.MatchedAmount
		doc.CurrentOperationID = dbDoc.CurrentOperationID
		if doc.MatchedAmount.GreaterThan(decimal.Zero) {
			if err := s.matchingSvc.ValidateMatchedDocumentEdit(dbDoc, &doc); err != nil {
				return nil, err
			}
		}
	} else {
		doc.MatchedAmount = decimal.Zero
		doc.CurrentOperationID = nil
	}

	if err := validateAccountCurrencies(spec, &doc, locked); err != nil {
		return nil, err
	}

	partyName, err := s.resolvePartyName(ctx, spec, &doc)
	if err != nil {
		return nil, err
	}

	refs := domain.DocumentNameRefs{PartyName: partyName}
	if doc.AccountID != nil {
		refs.AccountName = locked[*doc.AccountID].Name
	}
	if doc.OtherAccountID != nil {
		refs.OtherAccountName = locked[*doc.OtherAccountID].Name
	}
	doc.Name = domain.DeriveDocumentName(&doc, refs)
	doc.DocumentType = spec.Label

	if isNew {
		doc.DocumentID = uuid.NewString()
	}

	// Operation links are inserted after the document row so a first save
	// satisfies the foreign key.
	var opLinks []string

	if spec.PostsToLedger {
		changed := dbDoc != nil && ledgerFieldsChanged(dbDoc, &doc)
		needsRevert := dbDoc != nil && dbDoc.IsReady() && (!doc.IsReady() || changed)
		needsRepost := doc.IsReady() && (dbDoc == nil || !dbDoc.IsReady() || changed)

		if needsRevert {
			// Compensate with the old values and the opposite direction.
			// Reverting an Input is an Output, so it can still fail on
			// insufficient balance when the funds were spent since.
			params := portssvc.PostOperationParams{
				UserID:    userID,
				Concept:   spec.Concept,
				Detail:    "Revert: " + dbDoc.Name,
				Timestamp: now,
				Account:   locked[*dbDoc.AccountID],
				Direction: spec.PrimaryDirection.Opposite(),
				Amount:    dbDoc.Amount,
			}
			if dbDoc.OtherAccountID != nil {
				params.OtherAccount = locked[*dbDoc.OtherAccountID]
				params.OtherAmount = dbDoc.OtherAmount
			}
			op, err := s.accountingSvc.PostSimpleOperation(ctx, tx, params)
			if err != nil {
				return nil, fmt.Errorf("failed to revert document %s: %w", doc.DocumentID, err)
			}
			opLinks = append(opLinks, op.OperationID)
			doc.CurrentOperationID = nil
		}

		if needsRepost {
			params := portssvc.PostOperationParams{
				UserID:    userID,
				Concept:   spec.Concept,
				Detail:    doc.Name,
				Timestamp: now,
				Account:   locked[*doc.AccountID],
				Direction: spec.PrimaryDirection,
				Amount:    doc.Amount,
			}
			if doc.OtherAccountID != nil {
				params.OtherAccount = locked[*doc.OtherAccountID]
				params.OtherAmount = doc.OtherAmount
			}
			op, err := s.accountingSvc.PostSimpleOperation(ctx, tx, params)
			if err != nil {
				return nil, fmt.Errorf("failed to post document %s: %w", doc.DocumentID, err)
			}
			opLinks = append(opLinks, op.OperationID)
			doc.CurrentOperationID = &op.OperationID
		}
	}

	if isNew {
		doc.CreatedAt = now
		doc.CreatedBy = userID
	} else {
		doc.CreatedAt = dbDoc.CreatedAt
		doc.CreatedBy = dbDoc.CreatedBy
	}
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID

	if err := s.documentRepo.SaveDocumentInTx(ctx, tx, doc, isNew); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	for _, opID := range opLinks {
		if err := s.documentRepo.AddDocumentOperationInTx(ctx, tx, doc.DocumentID, opID); err != nil {
			return nil, err
		}
	}

	if isNew || dbDoc.Status != doc.Status {
		change := portsrepo.DocumentStatusChange{
			HistoryID:  uuid.NewString(),
			DocumentID: doc.DocumentID,
			UserID:     userID,
			NewStatus:  doc.Status,
			CreatedAt:  now,
		}
		if dbDoc != nil {
			old := dbDoc.Status
			change.OldStatus = &old
		}
		if err := s.documentRepo.AddStatusHistoryInTx(ctx, tx, change); err != nil {
			return nil, err
		}
	}

	if spec.MatchFamily != "" {
		if err := s.matchingSvc.ApplyDocumentSummary(ctx, tx, dbDoc, &doc, userID, now); err != nil {
			return nil, err
		}
	}

	if err := s.documentRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Document saved",
		slog.String("document_id", doc.DocumentID),
		slog.String("kind", string(doc.Kind)),
		slog.String("status", string(doc.Status)),
		slog.Bool("is_new", isNew))
	return &doc, nil
}

// GetDocument retrieves a document by id.
func (s *financeService) GetDocument(ctx context.Context, documentID string) (*domain.FinancialDocument, error) {
	return s.documentRepo.FindDocumentByID(ctx, documentID)
}

// ListDocuments retrieves a filtered, paginated list of documents.
func (s *financeService) ListDocuments(ctx context.Context, filter portsrepo.ListDocumentsFilter, limit int, nextToken *string) ([]domain.FinancialDocument, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.documentRepo.ListDocuments(ctx, filter, limit, nextToken)
}

// ListDocumentHistory retrieves the status audit trail, oldest first.
func (s *financeService) ListDocumentHistory(ctx context.Context, documentID string) ([]portsrepo.DocumentStatusChange, error) {
	return s.documentRepo.ListStatusHistory(ctx, documentID)
}

// ListDocumentOperations retrieves every ledger operation the document
// caused, reverts included, in creation order.
func (s *financeService) ListDocumentOperations(ctx context.Context, documentID string) ([]domain.Operation, error) {
	if _, err := s.documentRepo.FindDocumentByID(ctx, documentID); err != nil {
		return nil, err
	}
	ids, err := s.documentRepo.ListOperationIDs(ctx, documentID)
	if err != nil {
		return nil, err
	}
	ops := make([]domain.Operation, 0, len(ids))
	for _, id := range ids {
		op, err := s.operationRepo.FindOperationByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load operation %s: %w", id, err)
		}
		ops = append(ops, *op)
	}
	return ops, nil
}
