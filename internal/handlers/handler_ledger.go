package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
)

type ledgerHandler struct {
	accountingService portssvc.AccountingSvcFacade
}

func newLedgerHandler(as portssvc.AccountingSvcFacade) *ledgerHandler {
	return &ledgerHandler{accountingService: as}
}

func registerLedgerRoutes(rg *gin.RouterGroup, accountingService portssvc.AccountingSvcFacade) {
	h := newLedgerHandler(accountingService)

	rg.GET("/operations/:id", h.getOperation)
}

func (h *ledgerHandler) getOperation(c *gin.Context) {
	op, err := h.accountingService.GetOperation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}
