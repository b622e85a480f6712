package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/core/domain"
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

// documentHandler handles HTTP requests related to financial documents.
type documentHandler struct {
	financeService  portssvc.FinanceSvcFacade
	matchingService portssvc.MatchingSvcFacade
}

func newDocumentHandler(fs portssvc.FinanceSvcFacade, ms portssvc.MatchingSvcFacade) *documentHandler {
	return &documentHandler{financeService: fs, matchingService: ms}
}

// registerDocumentRoutes registers routes related to documents.
func registerDocumentRoutes(rg *gin.RouterGroup, financeService portssvc.FinanceSvcFacade, matchingService portssvc.MatchingSvcFacade) {
	h := newDocumentHandler(financeService, matchingService)

	documents := rg.Group("/documents")
	{
		documents.POST("", h.saveDocument)
		documents.PUT("", h.saveDocument) // edits carry the document id in the body
		documents.GET("", h.listDocuments)
		documents.GET("/:id", h.getDocument)
		documents.GET("/:id/history", h.listHistory)
		documents.GET("/:id/operations", h.listOperations)
		documents.GET("/:id/matches", h.listMatches)
	}
}

// saveDocument is the single write endpoint for documents: an empty
// documentID creates, a set one edits.
func (h *documentHandler) saveDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SaveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	isNew := req.DocumentID == ""
	doc, err := h.financeService.SaveDocument(c.Request.Context(), userID, req.ToDomainDocument())
	if err != nil {
		respondError(c, err, "Failed to save document")
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToDocumentResponse(doc))
}

func (h *documentHandler) getDocument(c *gin.Context) {
	doc, err := h.financeService.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

func (h *documentHandler) listDocuments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var filter portsrepo.ListDocumentsFilter
	if v := c.Query("kind"); v != "" {
		kind := domain.DocumentKind(v)
		if !kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document kind: " + v})
			return
		}
		filter.Kind = &kind
	}
	if v := c.Query("status"); v != "" {
		status := domain.DocumentStatus(v)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown document status: " + v})
			return
		}
		filter.Status = &status
	}
	if v := c.Query("partyID"); v != "" {
		filter.PartyID = &v
	}

	var nextToken *string
	if t := c.Query("nextToken"); t != "" {
		nextToken = &t
	}

	docs, token, err := h.financeService.ListDocuments(c.Request.Context(), filter, limit, nextToken)
	if err != nil {
		respondError(c, err, "Failed to list documents")
		return
	}
	c.JSON(http.StatusOK, dto.ListDocumentsResponse{
		Documents: dto.ToDocumentResponses(docs),
		NextToken: token,
	})
}

func (h *documentHandler) listHistory(c *gin.Context) {
	changes, err := h.financeService.ListDocumentHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list document history")
		return
	}

	out := make([]dto.StatusChangeResponse, len(changes))
	for i, ch := range changes {
		out[i] = dto.StatusChangeResponse{
			UserID:    ch.UserID,
			OldStatus: ch.OldStatus,
			NewStatus: ch.NewStatus,
			CreatedAt: ch.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

func (h *documentHandler) listOperations(c *gin.Context) {
	ops, err := h.financeService.ListDocumentOperations(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list document operations")
		return
	}

	out := make([]dto.OperationResponse, len(ops))
	for i := range ops {
		out[i] = dto.ToOperationResponse(&ops[i])
	}
	c.JSON(http.StatusOK, gin.H{"operations": out})
}

func (h *documentHandler) listMatches(c *gin.Context) {
	matches, err := h.matchingService.ListMatchesByDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list document matches")
		return
	}

	out := make([]dto.MatchResponse, len(matches))
	for i := range matches {
		out[i] = dto.ToMatchResponse(&matches[i])
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}
