package repositories

// Repositories bundles every repository instance for dependency wiring
type Repositories struct {
	Pools           PoolRepository
	Bindings        BindingRepository
	LegacyEndpoints LegacyEndpointRepository
	Teams           TeamRepository
	Templates       TemplateRepository
	Reports         ReportRepository
	Users           UserRepository
	Exchanges       ExchangeRepository
}
