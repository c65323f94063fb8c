package pgsql

import (
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	tillRepo := newPgxTillRepository(dbPool)
	commerceRepo := newPgxCommerceRepository(dbPool)
	reportingRepo := newReportingRepository(tillRepo, commerceRepo)

	return portsrepo.RepositoryProvider{
		LedgerRepo:    tillRepo,
		CommerceRepo:  commerceRepo,
		ReportingRepo: reportingRepo,
		Close:         dbPool.Close,
	}
}
