package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/apperrors"
	"github.com/atlastours/backoffice/internal/core/services"
	"github.com/atlastours/backoffice/internal/middleware"
)

// businessErrors are rule violations reported back to the caller as 400s.
var businessErrors = []error{
	apperrors.ErrValidation,
	services.ErrUnknownDirection,
	services.ErrAccountRequired,
	services.ErrAccountDisabled,
	services.ErrAmountRequired,
	services.ErrInsufficientBalance,
	services.ErrCurrencyMismatch,
	services.ErrDocumentNotReady,
	services.ErrOvermatched,
	services.ErrRelatedPartyMismatch,
	services.ErrAccountMismatch,
}

// conflictErrors clash with existing state and map to 409.
var conflictErrors = []error{
	apperrors.ErrDuplicate,
	apperrors.ErrConflict,
	services.ErrMatchLockedStatus,
	services.ErrMatchLockedAmount,
	services.ErrMatchLockedAccount,
	services.ErrMatchLockedRelatedEntity,
	services.ErrMatchLockedCurrency,
}

// respondError maps service errors to HTTP responses. Unknown errors become
// opaque 500s; the cause is only logged.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case matchesAny(err, conflictErrors):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case matchesAny(err, businessErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
