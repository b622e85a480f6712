package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/core/domain"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

// partyHandler serves one related-party registry (loan entities, agencies or
// providers); the same handler is registered once per kind.
type partyHandler struct {
	partyService portssvc.PartySvcFacade
	kind         domain.PartyKind
	family       domain.MatchFamily
}

func newPartyHandler(ps portssvc.PartySvcFacade, kind domain.PartyKind, family domain.MatchFamily) *partyHandler {
	return &partyHandler{partyService: ps, kind: kind, family: family}
}

// registerPartyRoutes registers the registry routes for one party kind under
// the given path segment.
func registerPartyRoutes(rg *gin.RouterGroup, partyService portssvc.PartySvcFacade, path string, kind domain.PartyKind, family domain.MatchFamily) {
	h := newPartyHandler(partyService, kind, family)

	parties := rg.Group("/" + path)
	{
		parties.POST("", h.createParty)
		parties.GET("", h.listParties)
		parties.GET("/:id", h.getParty)
		parties.PUT("/:id", h.updateParty)
		parties.POST("/:id/enable", h.enableParty)
		parties.POST("/:id/disable", h.disableParty)
		parties.GET("/:id/summaries", h.listSummaries)
	}
}

func (h *partyHandler) createParty(c *gin.Context) {
	var req dto.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	party, err := h.partyService.CreateParty(c.Request.Context(), h.kind, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create party")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPartyResponse(party))
}

func (h *partyHandler) getParty(c *gin.Context) {
	party, err := h.partyService.GetPartyByID(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve party")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartyResponse(party))
}

func (h *partyHandler) listParties(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	parties, err := h.partyService.ListParties(c.Request.Context(), h.kind, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list parties")
		return
	}

	out := make([]dto.PartyResponse, len(parties))
	for i := range parties {
		out[i] = dto.ToPartyResponse(&parties[i])
	}
	c.JSON(http.StatusOK, gin.H{"parties": out})
}

func (h *partyHandler) updateParty(c *gin.Context) {
	var req dto.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	party, err := h.partyService.UpdateParty(c.Request.Context(), h.kind, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update party")
		return
	}
	c.JSON(http.StatusOK, dto.ToPartyResponse(party))
}

func (h *partyHandler) enableParty(c *gin.Context) {
	h.setEnabled(c, true)
}

func (h *partyHandler) disableParty(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *partyHandler) setEnabled(c *gin.Context, enabled bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.partyService.SetPartyEnabled(c.Request.Context(), h.kind, c.Param("id"), enabled, userID); err != nil {
		respondError(c, err, "Failed to change party enabled flag")
		return
	}
	c.Status(http.StatusNoContent)
}

// listSummaries retrieves the per-currency aggregates for the party.
func (h *partyHandler) listSummaries(c *gin.Context) {
	summaries, err := h.partyService.ListSummaries(c.Request.Context(), h.family, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list summaries")
		return
	}

	out := make([]dto.SummaryResponse, len(summaries))
	for i := range summaries {
		out[i] = dto.ToSummaryResponse(&summaries[i])
	}
	c.JSON(http.StatusOK, gin.H{"summaries": out})
}
