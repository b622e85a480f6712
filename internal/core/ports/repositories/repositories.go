package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryWithTx
	OperationRepo OperationRepositoryFacade
	DocumentRepo  DocumentRepositoryWithTx
	MatchRepo     MatchRepositoryWithTx
	SummaryRepo   SummaryRepositoryFacade
	PartyRepo     PartyRepositoryFacade
	UserRepo      UserRepositoryFacade
}
