package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Every backend fills all fields from one underlying store.
type RepositoryProvider struct {
	LedgerRepo    LedgerStore
	CommerceRepo  CommerceStore
	ReportingRepo ReportingRepository
	// Close releases the backend's connections.
	Close func()
}
