package pgsql

import (
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
)

// reportingRepository joins the ledger and commerce readers for the aggregator.
type reportingRepository struct {
	*PgxTillRepository
	*PgxCommerceRepository
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func newReportingRepository(till *PgxTillRepository, commerce *PgxCommerceRepository) *reportingRepository {
	return &reportingRepository{PgxTillRepository: till, PgxCommerceRepository: commerce}
}
