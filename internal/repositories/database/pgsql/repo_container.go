package pgsql

import (
	portsrepo "github.com/atlastours/backoffice/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires all pgx repositories over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:   newPgxAccountRepository(dbPool),
		OperationRepo: newPgxOperationRepository(dbPool),
		DocumentRepo:  newPgxDocumentRepository(dbPool),
		MatchRepo:     newPgxMatchRepository(dbPool),
		SummaryRepo:   newPgxSummaryRepository(dbPool),
		PartyRepo:     newPgxPartyRepository(dbPool),
		UserRepo:      newPgxUserRepository(dbPool),
	}
}
