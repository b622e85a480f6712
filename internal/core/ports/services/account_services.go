package services

import (
	"context"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/atlastours/backoffice/internal/dto"
)

// AccountSvcFacade manages account master data. Balances are off limits here;
// they belong to the accounting service.
type AccountSvcFacade interface {
	// CreateAccount persists a new account with a zero balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// GetAccountByID retrieves a specific account.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a paginated list of accounts.
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, error)

	// UpdateAccount renames an account.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// SetAccountEnabled enables or disables an account. Accounts are never deleted.
	SetAccountEnabled(ctx context.Context, accountID string, enabled bool, userID string) error
}
