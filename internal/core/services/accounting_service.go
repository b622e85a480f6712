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
	ErrUnknownDirection    = errors.New("movement direction must be INPUT or OUTPUT")
	ErrAccountRequired     = errors.New("an account is required")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrAmountRequired      = errors.New("amount must be greater than zero")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
)

// accountingService is the double-entry core: it is the only writer of
// account balances and movement rows.
type accountingService struct {
	accountRepo   portsrepo.AccountRepositoryWithTx
	operationRepo portsrepo.OperationRepositoryFacade
}

// NewAccountingService creates the accounting service.
func NewAccountingService(accountRepo portsrepo.AccountRepositoryWithTx, operationRepo portsrepo.OperationRepositoryFacade) portssvc.AccountingSvcFacade {
	return &accountingService{
		accountRepo:   accountRepo,
		operationRepo: operationRepo,
	}
}

var _ portssvc.AccountingSvcFacade = (*accountingService)(nil)

// validateLeg checks one movement leg against the locked account state.
// Returns the amount normalized to 2 decimal places.
func validateLeg(account *domain.Account, direction domain.MovementDirection, amount decimal.Decimal) (decimal.Decimal, error) {
	if account == nil {
		return decimal.Zero, ErrAccountRequired
	}
	if !account.Enabled {
		return decimal.Zero, fmt.Errorf("%w: %s (%s)", ErrAccountDisabled, account.Name, account.Currency)
	}
	amount = amount.RoundBank(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrAmountRequired, amount.String())
	}
	if direction == domain.Output && account.Balance.LessThan(amount) {
		return decimal.Zero, fmt.Errorf("%w: account %s has %s, movement needs %s",
			ErrInsufficientBalance, account.Name, account.Balance.StringFixedBank(2), amount.StringFixedBank(2))
	}
	return amount, nil
}

// PostSimpleOperation posts one operation with 1-2 movements inside the
// caller's transaction. Every involved account must already be row-locked by
// that transaction; the engine takes no locks of its own so an outer edit can
// lock all its accounts once and post several operations against them.
func (s *accountingService) PostSimpleOperation(ctx context.Context, tx pgx.Tx, p portssvc.PostOperationParams) (*domain.Operation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !p.Direction.Valid() {
		return nil, fmt.Errorf("%w: got %q", ErrUnknownDirection, string(p.Direction))
	}

	amount, err := validateLeg(p.Account, p.Direction, p.Amount)
	if err != nil {
		return nil, err
	}

	otherDirection := p.Direction.Opposite()
	var otherAmount decimal.Decimal
	if p.OtherAccount != nil {
		if p.OtherAmount != nil {
			otherAmount = *p.OtherAmount
		} else {
			// Single-amount pair: both legs move the same figure, so the
			// accounts must share a currency.
			if p.Account.Currency != p.OtherAccount.Currency {
				return nil, fmt.Errorf("%w: %s is %s, %s is %s",
					ErrCurrencyMismatch, p.Account.Name, p.Account.Currency, p.OtherAccount.Name, p.OtherAccount.Currency)
			}
			otherAmount = amount
		}
		otherAmount, err = validateLeg(p.OtherAccount, otherDirection, otherAmount)
		if err != nil {
			return nil, err
		}
	}

	now := p.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	op := domain.Operation{
		OperationID: uuid.NewString(),
		UserID:      p.UserID,
		Concept:     p.Concept,
		Detail:      p.Detail,
		CreatedAt:   now,
	}

	balanceChanges := make(map[string]decimal.Decimal)

	// Primary leg first: the snapshot is the account balance immediately
	// after this movement, and the in-memory account is advanced so a
	// subsequent posting in the same transaction sees fresh state.
	p.Account.Balance = p.Account.Balance.Add(amount.Mul(p.Direction.Sign())).RoundBank(2)
	op.Movements = append(op.Movements, domain.Movement{
		MovementID:  uuid.NewString(),
		OperationID: op.OperationID,
		AccountID:   p.Account.AccountID,
		Direction:   p.Direction,
		Amount:      amount,
		Balance:     p.Account.Balance,
		CreatedAt:   now,
	})
	balanceChanges[p.Account.AccountID] = amount.Mul(p.Direction.Sign())

	if p.OtherAccount != nil {
		p.OtherAccount.Balance = p.OtherAccount.Balance.Add(otherAmount.Mul(otherDirection.Sign())).RoundBank(2)
		op.Movements = append(op.Movements, domain.Movement{
			MovementID:  uuid.NewString(),
			OperationID: op.OperationID,
			AccountID:   p.OtherAccount.AccountID,
			Direction:   otherDirection,
			Amount:      otherAmount,
			Balance:     p.OtherAccount.Balance,
			CreatedAt:   now,
		})
		balanceChanges[p.OtherAccount.AccountID] = balanceChanges[p.OtherAccount.AccountID].Add(otherAmount.Mul(otherDirection.Sign()))
	}

	if err := s.operationRepo.SaveOperationInTx(ctx, tx, op); err != nil {
		return nil, fmt.Errorf("failed to save operation: %w", err)
	}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, p.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to update account balances: %w", err)
	}

	logger.Debug("Operation posted",
		slog.String("operation_id", op.OperationID),
		slog.String("concept", string(op.Concept)),
		slog.Int("movements", len(op.Movements)))
	return &op, nil
}

// CheckBalance recomputes the signed movement sum for the account, in posting
// order, and compares it against the stored balance at 2-decimal precision.
func (s *accountingService) CheckBalance(ctx context.Context, accountID string) (bool, decimal.Decimal, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	movements, err := s.operationRepo.FindMovementsByAccountID(ctx, accountID)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to load movements for account %s: %w", accountID, err)
	}

	computed := decimal.Zero
	for _, m := range movements {
		computed = computed.Add(m.SignedAmount())
	}
	computed = computed.RoundBank(2)

	return computed.Equal(account.Balance.RoundBank(2)), computed, nil
}

// RecalculateBalance replays all movements for the account in creation order,
// rewriting any drifted running-balance snapshot, and sets the account
// balance to the final total. Idempotent; the account row is locked for the
// duration so no posting can interleave.
func (s *accountingService) RecalculateBalance(ctx context.Context, accountID string, userID string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.accountRepo.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer s.accountRepo.Rollback(ctx, tx)

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{accountID})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	account, ok := accounts[accountID]
	if !ok {
		return decimal.Zero, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", accountID))
	}

	movements, err := s.operationRepo.FindMovementsByAccountIDInTx(ctx, tx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load movements for account %s: %w", accountID, err)
	}

	now := time.Now().UTC()
	running := decimal.Zero
	repaired := 0
	for _, m := range movements {
		running = running.Add(m.SignedAmount()).RoundBank(2)
		if !running.Equal(m.Balance) {
			if err := s.operationRepo.UpdateMovementBalanceInTx(ctx, tx, m.MovementID, running); err != nil {
				return decimal.Zero, fmt.Errorf("failed to repair snapshot of movement %s: %w", m.MovementID, err)
			}
			repaired++
		}
	}

	if err := s.accountRepo.SetAccountBalanceInTx(ctx, tx, accountID, running, userID, now); err != nil {
		return decimal.Zero, fmt.Errorf("failed to set balance of account %s: %w", accountID, err)
	}

	if err := s.accountRepo.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}

	if repaired > 0 || !running.Equal(account.Balance) {
		logger.Warn("Account balance repaired",
			slog.String("account_id", accountID),
			slog.String("previous", account.Balance.StringFixedBank(2)),
			slog.String("recalculated", running.StringFixedBank(2)),
			slog.Int("snapshots_rewritten", repaired))
	}
	return running, nil
}

// GetOperation retrieves an operation with its movements in leg order.
func (s *accountingService) GetOperation(ctx context.Context, operationID string) (*domain.Operation, error) {
	return s.operationRepo.FindOperationByID(ctx, operationID)
}

// ListAccountMovements retrieves a paginated movement history for an account.
func (s *accountingService) ListAccountMovements(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.operationRepo.ListMovementsByAccountID(ctx, accountID, limit, nextToken)
}
