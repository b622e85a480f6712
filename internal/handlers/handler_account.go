package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/core/domain"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/dto"
	"github.com/atlastours/backoffice/internal/middleware"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService    portssvc.AccountSvcFacade
	accountingService portssvc.AccountingSvcFacade
	partyService      portssvc.PartySvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, acs portssvc.AccountingSvcFacade, ps portssvc.PartySvcFacade) *accountHandler {
	return &accountHandler{accountService: as, accountingService: acs, partyService: ps}
}

// registerAccountRoutes registers routes related to accounts and their ledger views.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, accountingService portssvc.AccountingSvcFacade, partyService portssvc.PartySvcFacade) {
	h := newAccountHandler(accountService, accountingService, partyService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", h.updateAccount)
		accounts.POST("/:id/enable", h.enableAccount)
		accounts.POST("/:id/disable", h.disableAccount)
		accounts.GET("/:id/movements", h.listMovements)
		accounts.GET("/:id/balance/check", h.checkBalance)
		accounts.POST("/:id/balance/recalculate", h.recalculateBalance)
		accounts.GET("/:id/loan-summaries", h.listLoanSummaries)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}

	out := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, gin.H{"accounts": out})
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) enableAccount(c *gin.Context) {
	h.setEnabled(c, true)
}

func (h *accountHandler) disableAccount(c *gin.Context) {
	h.setEnabled(c, false)
}

func (h *accountHandler) setEnabled(c *gin.Context, enabled bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.SetAccountEnabled(c.Request.Context(), c.Param("id"), enabled, userID); err != nil {
		respondError(c, err, "Failed to change account enabled flag")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) listMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	var nextToken *string
	if t := c.Query("nextToken"); t != "" {
		nextToken = &t
	}

	movements, token, err := h.accountingService.ListAccountMovements(c.Request.Context(), c.Param("id"), limit, nextToken)
	if err != nil {
		respondError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.ToMovementResponses(movements),
		NextToken: token,
	})
}

func (h *accountHandler) checkBalance(c *gin.Context) {
	accountID := c.Param("id")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}

	consistent, computed, err := h.accountingService.CheckBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to check balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceCheckResponse{
		AccountID:       accountID,
		Consistent:      consistent,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
	})
}

// listLoanSummaries retrieves the matching aggregates for documents that use
// this account as their loan counterpart.
func (h *accountHandler) listLoanSummaries(c *gin.Context) {
	summaries, err := h.partyService.ListSummaries(c.Request.Context(), domain.MatchFamilyLoanAccount, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list loan summaries")
		return
	}

	out := make([]dto.SummaryResponse, len(summaries))
	for i := range summaries {
		out[i] = dto.ToSummaryResponse(&summaries[i])
	}
	c.JSON(http.StatusOK, gin.H{"summaries": out})
}

func (h *accountHandler) recalculateBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID := c.Param("id")
	balance, err := h.accountingService.RecalculateBalance(c.Request.Context(), accountID, userID)
	if err != nil {
		respondError(c, err, "Failed to recalculate balance")
		return
	}

	logger.Info("Balance recalculated", slog.String("account_id", accountID))
	c.JSON(http.StatusOK, gin.H{"accountID": accountID, "balance": balance})
}
