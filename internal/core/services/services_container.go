package services

import (
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	portssvc "github.com/atlastours/backoffice/internal/core/ports/services"
	"github.com/atlastours/backoffice/pkg/config"
)

// NewServiceContainer creates a new service container with properly
// initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The accounting engine comes first: document saves post through it.
	container.Accounting = NewAccountingService(repos.AccountRepo, repos.OperationRepo)
	container.Matching = NewMatchingService(repos.DocumentRepo, repos.MatchRepo, repos.SummaryRepo)
	container.Finance = NewFinanceService(
		repos.AccountRepo,
		repos.DocumentRepo,
		repos.OperationRepo,
		repos.PartyRepo,
		container.Accounting,
		container.Matching,
	)

	container.Account = NewAccountService(repos.AccountRepo)
	container.Party = NewPartyService(repos.PartyRepo, repos.SummaryRepo)
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg)

	return container
}
