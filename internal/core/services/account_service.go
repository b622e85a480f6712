package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

type accountService struct {
	accountRepo portsrepo.AccountRepositoryWithTx
}

// NewAccountService creates the account master-data service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryWithTx) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account. Balances always start at zero; funds
// arrive through documents.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.Account{
		AccountID: uuid.NewString(),
		Name:      req.Name,
		Currency:  req.Currency,
		Balance:   decimal.Zero,
		Enabled:   true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created",
		slog.String("account_id", account.AccountID),
		slog.String("currency", account.Currency))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

func (s *accountService) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.Name = req.Name
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return account, nil
}

// SetAccountEnabled enables or disables an account. Disabled accounts keep
// their history but reject new movements.
func (s *accountService) SetAccountEnabled(ctx context.Context, accountID string, enabled bool, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accountRepo.SetAccountEnabled(ctx, accountID, enabled, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set enabled flag of account %s: %w", accountID, err)
	}

	logger.Info("Account enabled flag changed",
		slog.String("account_id", accountID),
		slog.Bool("enabled", enabled))
	return nil
}
