package services

import (
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// notifier receives every ledger event; subscriber backs the live event stream
// and may be nil.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.Notifier, subscriber portssvc.EventSubscriber) *portssvc.ServiceContainer {
	options := []ServiceOption{
		WithNotifier(notifier),
		WithLocation(cfg.StoreLocation),
	}

	return &portssvc.ServiceContainer{
		Till:           NewTillService(repos.LedgerRepo, options...),
		Reconciliation: NewReconciliationService(repos.LedgerRepo, options...),
		Movement:       NewMovementService(repos.LedgerRepo, options...),
		Commerce:       NewCommerceService(repos.CommerceRepo, cfg.LowStockDefault, options...),
		Reporting:      NewReportingService(repos.ReportingRepo, options...),
		Events:         subscriber,
	}
}
