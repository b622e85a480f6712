package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/atlastours/backoffice/internal/core/domain"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/internal/middleware"
	"github.com/atlastours/backoffice/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public authentication routes
	registerAuthRoutes(r, services)

	// API v1 routes behind the auth middleware
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User)
	registerAccountRoutes(v1, services.Account, services.Accounting, services.Party)
	registerDocumentRoutes(v1, services.Finance, services.Matching)
	registerMatchRoutes(v1, services.Matching)
	registerLedgerRoutes(v1, services.Accounting)

	registerPartyRoutes(v1, services.Party, "loan-entities", domain.PartyLoanEntity, domain.MatchFamilyLoanEntity)
	registerPartyRoutes(v1, services.Party, "agencies", domain.PartyAgency, domain.MatchFamilyAgency)
	registerPartyRoutes(v1, services.Party, "providers", domain.PartyProvider, domain.MatchFamilyProvider)
}
