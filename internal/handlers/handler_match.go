package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/core/domain"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

// matchHandler handles HTTP requests related to matches and summaries.
type matchHandler struct {
	matchingService portssvc.MatchingSvcFacade
}

func newMatchHandler(ms portssvc.MatchingSvcFacade) *matchHandler {
	return &matchHandler{matchingService: ms}
}

// registerMatchRoutes registers routes related to matches.
func registerMatchRoutes(rg *gin.RouterGroup, matchingService portssvc.MatchingSvcFacade) {
	h := newMatchHandler(matchingService)

	matches := rg.Group("/matches")
	{
		matches.POST("", h.saveMatch)
		matches.PUT("", h.saveMatch) // edits carry the match id in the body
		matches.GET("/:id", h.getMatch)
		matches.DELETE("/:id", h.deleteMatch)
	}

	rg.GET("/summaries", h.getSummary)
}

// saveMatch creates a match (empty matchID) or changes an existing match's amount.
func (h *matchHandler) saveMatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveMatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	isNew := req.MatchID == ""
	match, err := h.matchingService.SaveMatch(c.Request.Context(), userID, req.ToDomainMatch())
	if err != nil {
		respondError(c, err, "Failed to save match")
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToMatchResponse(match))
}

func (h *matchHandler) getMatch(c *gin.Context) {
	match, err := h.matchingService.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve match")
		return
	}
	c.JSON(http.StatusOK, dto.ToMatchResponse(match))
}

func (h *matchHandler) deleteMatch(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.matchingService.DeleteMatch(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete match")
		return
	}
	c.Status(http.StatusNoContent)
}

// getSummary retrieves one party aggregate row by family, partyID and
// (for currency-scoped families) currency.
func (h *matchHandler) getSummary(c *gin.Context) {
	family := domain.MatchFamily(c.Query("family"))
	partyID := c.Query("partyID")
	currency := c.Query("currency")

	if partyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "partyID is required"})
		return
	}
	switch family {
	case domain.MatchFamilyLoanEntity, domain.MatchFamilyLoanAccount, domain.MatchFamilyAgency, domain.MatchFamilyProvider:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown match family: " + string(family)})
		return
	}

	summary, err := h.matchingService.GetSummary(c.Request.Context(), family, partyID, currency)
	if err != nil {
		respondError(c, err, "Failed to retrieve summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToSummaryResponse(summary))
}
