package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

var (
	ErrDocumentNotReady     = errors.New("document is not in READY status")
	ErrOvermatched          = errors.New("matched total would exceed document amount")
	ErrRelatedPartyMismatch = errors.New("documents reference different related parties")
	ErrAccountMismatch      = errors.New("documents reference different accounts")

	// Edits to a document with active matches are constrained; each sentinel
	// names the locked aspect.
	ErrMatchLockedStatus        = errors.New("document has active matches and must stay READY")
	ErrMatchLockedAmount        = errors.New("document amount cannot drop below its matched total")
	ErrMatchLockedAccount       = errors.New("account cannot change while the document has active matches")
	ErrMatchLockedRelatedEntity = errors.New("related party cannot change while the document has active matches")
	ErrMatchLockedCurrency      = errors.New("currency cannot change while the document has active matches")
)

// matchingService links credit and debit documents of one family and keeps
// the per-party summaries consistent. It posts no ledger movements.
type matchingService struct {
	documentRepo portsrepo.DocumentRepositoryWithTx
	matchRepo    portsrepo.MatchRepositoryWithTx
	summaryRepo  portsrepo.SummaryRepositoryFacade
}

// NewMatchingService creates the matching service.
func NewMatchingService(
	documentRepo portsrepo.DocumentRepositoryWithTx,
	matchRepo portsrepo.MatchRepositoryWithTx,
	summaryRepo portsrepo.SummaryRepositoryFacade,
) portssvc.MatchingSvcFacade {
	return &matchingService{
		documentRepo: documentRepo,
		matchRepo:    matchRepo,
		summaryRepo:  summaryRepo,
	}
}

var _ portssvc.MatchingSvcFacade = (*matchingService)(nil)

// summaryCurrency returns the currency key of the family's summary rows.
// Currency-unscoped families aggregate under an empty key.
func summaryCurrency(family domain.MatchFamily, currency string) string {
	if family.CurrencyScoped() {
		return currency
	}
	return ""
}

// lockDocumentPair locks both documents in deterministic id order so two
// concurrent matches over the same pair cannot deadlock.
func (s *matchingService) lockDocumentPair(ctx context.Context, tx pgx.Tx, creditID, debitID string) (credit, debit *domain.FinancialDocument, err error) {
	first, second := creditID, debitID
	if second < first {
		first, second = second, first
	}
	docs := make(map[string]*domain.FinancialDocument, 2)
	for _, id := range []string{first, second} {
		d, err := s.documentRepo.FindDocumentByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to lock document %s: %w", id, err)
		}
		docs[id] = d
	}
	return docs[creditID], docs[debitID], nil
}

// validatePair checks that the two locked documents can carry a match of the
// given family: readiness, family membership with the right sides, a shared
// party, and the family's currency or account identity.
func validatePair(family domain.MatchFamily, credit, debit *domain.FinancialDocument) error {
	for _, d := range []*domain.FinancialDocument{credit, debit} {
		if !d.IsReady() {
			return fmt.Errorf("%w: %s", ErrDocumentNotReady, d.Name)
		}
	}

	creditSpec, _ := credit.Kind.Spec()
	if creditSpec.MatchFamily != family || creditSpec.MatchSide != domain.CreditSide {
		return fmt.Errorf("%w: %s is not a %s credit document", apperrors.ErrValidation, credit.Name, string(family))
	}
	debitSpec, _ := debit.Kind.Spec()
	if debitSpec.MatchFamily != family || debitSpec.MatchSide != domain.DebitSide {
		return fmt.Errorf("%w: %s is not a %s debit document", apperrors.ErrValidation, debit.Name, string(family))
	}

	creditParty, ok := credit.PartyID()
	if !ok {
		return fmt.Errorf("%w: %s has no related party", apperrors.ErrValidation, credit.Name)
	}
	debitParty, ok := debit.PartyID()
	if !ok {
		return fmt.Errorf("%w: %s has no related party", apperrors.ErrValidation, debit.Name)
	}
	if creditParty != debitParty {
		return fmt.Errorf("%w: %s vs %s", ErrRelatedPartyMismatch, credit.Name, debit.Name)
	}

	if family.CurrencyScoped() && credit.Currency != debit.Currency {
		return fmt.Errorf("%w: %s is %s, %s is %s",
			ErrCurrencyMismatch, credit.Name, credit.Currency, debit.Name, debit.Currency)
	}
	if family == domain.MatchFamilyLoanEntity || family == domain.MatchFamilyLoanAccount {
		if credit.MatchAccountID() != debit.MatchAccountID() {
			return fmt.Errorf("%w: %s vs %s", ErrAccountMismatch, credit.Name, debit.Name)
		}
	}
	return nil
}

// refreshMatchedAmounts re-derives both documents' matched totals from the
// surviving match rows.
func (s *matchingService) refreshMatchedAmounts(ctx context.Context, tx pgx.Tx, userID string, now time.Time, docIDs ...string) error {
	for _, id := range docIDs {
		sum, err := s.matchRepo.SumMatchedForDocumentInTx(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to sum matches of document %s: %w", id, err)
		}
		if err := s.documentRepo.SetMatchedAmountInTx(ctx, tx, id, sum, userID, now); err != nil {
			return fmt.Errorf("failed to update matched amount of document %s: %w", id, err)
		}
	}
	return nil
}

// applyMatchedDelta adjusts the family summary's matched total. Summary rows
// are locked last in every write path.
func (s *matchingService) applyMatchedDelta(ctx context.Context, tx pgx.Tx, family domain.MatchFamily, partyID, currency string, delta decimal.Decimal, userID string, now time.Time) error {
	summary, err := s.summaryRepo.GetOrCreateSummaryForUpdate(ctx, tx, family, partyID, summaryCurrency(family, currency), userID, now)
	if err != nil {
		return fmt.Errorf("failed to lock summary: %w", err)
	}
	return s.summaryRepo.ApplySummaryDeltaInTx(ctx, tx, summary.SummaryID, portsrepo.SummaryDelta{Matched: delta}, userID, now)
}

// SaveMatch creates a match or changes an existing match's amount. The
// documents of an existing match are fixed; only the amount may move.
func (s *matchingService) SaveMatch(ctx context.Context, userID string, match domain.Match) (*domain.Match, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	match.Amount = match.Amount.RoundBank(2)
	if match.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", ErrAmountRequired, match.Amount.String())
	}
	switch match.Family {
	case domain.MatchFamilyLoanEntity, domain.MatchFamilyLoanAccount, domain.MatchFamilyAgency, domain.MatchFamilyProvider:
	default:
		return nil, fmt.Errorf("%w: unknown match family %q", apperrors.ErrValidation, string(match.Family))
	}

	tx, err := s.matchRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.matchRepo.Rollback(ctx, tx)

	isNew := match.MatchID == ""
	oldAmount := decimal.Zero
	if !isNew {
		existing, err := s.matchRepo.FindMatchByIDForUpdate(ctx, tx, match.MatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock match %s: %w", match.MatchID, err)
		}
		if existing.Family != match.Family ||
			existing.CreditDocumentID != match.CreditDocumentID ||
			existing.DebitDocumentID != match.DebitDocumentID {
			return nil, fmt.Errorf("%w: only the amount of a match can change", apperrors.ErrValidation)
		}
		oldAmount = existing.Amount
		match.CreatedAt = existing.CreatedAt
		match.CreatedBy = existing.CreatedBy
	}

	if match.CreditDocumentID == "" || match.DebitDocumentID == "" {
		return nil, fmt.Errorf("%w: both documents are required", apperrors.ErrValidation)
	}
	if match.CreditDocumentID == match.DebitDocumentID {
		return nil, fmt.Errorf("%w: a document cannot match itself", apperrors.ErrValidation)
	}

	credit, debit, err := s.lockDocumentPair(ctx, tx, match.CreditDocumentID, match.DebitDocumentID)
	if err != nil {
		return nil, err
	}

	if isNew {
		// The pair is unique; the lock makes the check race-free against a
		// concurrent save, the constraint backs it against lost reads.
		if _, err := s.matchRepo.FindMatchByPairForUpdate(ctx, tx, match.CreditDocumentID, match.DebitDocumentID); err == nil {
			return nil, fmt.Errorf("%w: these documents are already matched", apperrors.ErrDuplicate)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	if err := validatePair(match.Family, credit, debit); err != nil {
		return nil, err
	}

	delta := match.Amount.Sub(oldAmount)
	if credit.MatchedAmount.Add(delta).GreaterThan(credit.Amount) {
		return nil, fmt.Errorf("%w: credit document %s has %s unmatched",
			ErrOvermatched, credit.Name, credit.Unmatched().StringFixedBank(2))
	}
	if debit.MatchedAmount.Add(delta).GreaterThan(debit.Amount) {
		return nil, fmt.Errorf("%w: debit document %s has %s unmatched",
			ErrOvermatched, debit.Name, debit.Unmatched().StringFixedBank(2))
	}

	now := time.Now().UTC()
	if isNew {
		match.MatchID = uuid.NewString()
		match.CreatedAt = now
		match.CreatedBy = userID
	}
	match.LastUpdatedAt = now
	match.LastUpdatedBy = userID

	if err := s.matchRepo.SaveMatchInTx(ctx, tx, match, isNew); err != nil {
		return nil, fmt.Errorf("failed to save match: %w", err)
	}
	if err := s.refreshMatchedAmounts(ctx, tx, userID, now, match.CreditDocumentID, match.DebitDocumentID); err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		partyID, _ := credit.PartyID()
		if err := s.applyMatchedDelta(ctx, tx, match.Family, partyID, credit.Currency, delta, userID, now); err != nil {
			return nil, err
		}
	}

	if err := s.matchRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Match saved",
		slog.String("match_id", match.MatchID),
		slog.String("family", string(match.Family)),
		slog.String("amount", match.Amount.StringFixedBank(2)),
		slog.Bool("is_new", isNew))
	return &match, nil
}

// DeleteMatch removes a match, rolling its amount out of both documents'
// matched totals and the party summary.
func (s *matchingService) DeleteMatch(ctx context.Context, userID string, matchID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.matchRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.matchRepo.Rollback(ctx, tx)

	match, err := s.matchRepo.FindMatchByIDForUpdate(ctx, tx, matchID)
	if err != nil {
		return fmt.Errorf("failed to lock match %s: %w", matchID, err)
	}

	credit, _, err := s.lockDocumentPair(ctx, tx, match.CreditDocumentID, match.DebitDocumentID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.matchRepo.DeleteMatchInTx(ctx, tx, matchID); err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	if err := s.refreshMatchedAmounts(ctx, tx, userID, now, match.CreditDocumentID, match.DebitDocumentID); err != nil {
		return err
	}

	partyID, _ := credit.PartyID()
	if err := s.applyMatchedDelta(ctx, tx, match.Family, partyID, credit.Currency, match.Amount.Neg(), userID, now); err != nil {
		return err
	}

	if err := s.matchRepo.Commit(ctx, tx); err != nil {
		return err
	}

	logger.Info("Match deleted",
		slog.String("match_id", matchID),
		slog.String("family", string(match.Family)))
	return nil
}

// GetMatch retrieves a match by id.
func (s *matchingService) GetMatch(ctx context.Context, matchID string) (*domain.Match, error) {
	return s.matchRepo.FindMatchByID(ctx, matchID)
}

// ListMatchesByDocument retrieves all matches touching a document.
func (s *matchingService) ListMatchesByDocument(ctx context.Context, documentID string) ([]domain.Match, error) {
	if _, err := s.documentRepo.FindDocumentByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.matchRepo.ListMatchesByDocument(ctx, documentID)
}

// GetSummary retrieves the aggregate row for a party identity.
func (s *matchingService) GetSummary(ctx context.Context, family domain.MatchFamily, partyID, currency string) (*domain.PartySummary, error) {
	return s.summaryRepo.FindSummary(ctx, family, partyID, summaryCurrency(family, currency))
}

// ValidateMatchedDocumentEdit rejects edits that would break the document's
// active matches. Pure check over the old and proposed states.
func (s *matchingService) ValidateMatchedDocumentEdit(old, updated *domain.FinancialDocument) error {
	spec, ok := old.Kind.Spec()
	if !ok || spec.MatchFamily == "" {
		return nil
	}

	if old.IsReady() && !updated.IsReady() {
		return fmt.Errorf("%w: %s", ErrMatchLockedStatus, old.Name)
	}
	if updated.Amount.LessThan(old.MatchedAmount) {
		return fmt.Errorf("%w: matched %s, new amount %s",
			ErrMatchLockedAmount, old.MatchedAmount.StringFixedBank(2), updated.Amount.StringFixedBank(2))
	}

	// Loan matches key on an account identity (the posting account for
	// loan-entity kinds, the loan account itself for loan-account kinds);
	// moving it would detach the matches.
	if spec.MatchFamily == domain.MatchFamilyLoanEntity || spec.MatchFamily == domain.MatchFamilyLoanAccount {
		if old.MatchAccountID() != updated.MatchAccountID() {
			return fmt.Errorf("%w: %s", ErrMatchLockedAccount, old.Name)
		}
	}

	oldParty, _ := old.PartyID()
	newParty, _ := updated.PartyID()
	if oldParty != newParty {
		return fmt.Errorf("%w: %s", ErrMatchLockedRelatedEntity, old.Name)
	}
	if spec.MatchFamily.CurrencyScoped() && old.Currency != updated.Currency {
		return fmt.Errorf("%w: %s", ErrMatchLockedCurrency, old.Name)
	}
	return nil
}

// ApplyDocumentSummary maintains the credit/debit side of the party summary
// for one document save. old is the previous persisted state, nil on first
// save. Only Ready documents contribute; an edit that moves the document
// between parties or currencies shifts its amount between summary rows.
func (s *matchingService) ApplyDocumentSummary(ctx context.Context, tx pgx.Tx, old, updated *domain.FinancialDocument, userID string, now time.Time) error {
	spec, ok := updated.Kind.Spec()
	if !ok || spec.MatchFamily == "" {
		return nil
	}
	family := spec.MatchFamily

	sideDelta := func(amount decimal.Decimal) portsrepo.SummaryDelta {
		if spec.MatchSide == domain.CreditSide {
			return portsrepo.SummaryDelta{Credit: amount}
		}
		return portsrepo.SummaryDelta{Debit: amount}
	}
	apply := func(partyID, currency string, amount decimal.Decimal) error {
		summary, err := s.summaryRepo.GetOrCreateSummaryForUpdate(ctx, tx, family, partyID, summaryCurrency(family, currency), userID, now)
		if err != nil {
			return fmt.Errorf("failed to lock summary: %w", err)
		}
		return s.summaryRepo.ApplySummaryDeltaInTx(ctx, tx, summary.SummaryID, sideDelta(amount), userID, now)
	}

	oldReady := old != nil && old.IsReady()
	newReady := updated.IsReady()
	if !oldReady && !newReady {
		return nil
	}

	newParty, _ := updated.PartyID()
	if oldReady && newReady {
		oldParty, _ := old.PartyID()
		sameRow := oldParty == newParty && summaryCurrency(family, old.Currency) == summaryCurrency(family, updated.Currency)
		if sameRow {
			diff := updated.Amount.Sub(old.Amount)
			if diff.IsZero() {
				return nil
			}
			return apply(newParty, updated.Currency, diff)
		}
		if err := apply(oldParty, old.Currency, old.Amount.Neg()); err != nil {
			return err
		}
		return apply(newParty, updated.Currency, updated.Amount)
	}
	if oldReady {
		oldParty, _ := old.PartyID()
		return apply(oldParty, old.Currency, old.Amount.Neg())
	}
	return apply(newParty, updated.Currency, updated.Amount)
}
