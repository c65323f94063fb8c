package services

// ServiceContainer holds instances of all the application services.
// Handlers and the admin CLI pull what they need from here.
type ServiceContainer struct {
	Till           TillSvcFacade
	Reconciliation ReconciliationSvc
	Movement       MovementSvcFacade
	Commerce       CommerceSvcFacade
	Reporting      ReportingService
	Events         EventSubscriber
}
