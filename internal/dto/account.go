package dto

import (
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Currency string `json:"currency" binding:"required,iso4217"`
}

// UpdateAccountRequest is the payload for renaming an account.
type UpdateAccountRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID string          `json:"accountID"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Enabled   bool            `json:"enabled"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ToAccountResponse maps a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.AccountID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
		Enabled:   a.Enabled,
		CreatedAt: a.CreatedAt,
	}
}

// BalanceCheckResponse reports the outcome of a balance consistency check.
type BalanceCheckResponse struct {
	AccountID       string          `json:"accountID"`
	Consistent      bool            `json:"consistent"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
}
