package services

import (
	"context"
	"time"

	"github.com/atlastours/backoffice/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken creates a signed bearer token for the user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}
