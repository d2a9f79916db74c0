package services

import (
	"log/slog"

	"github.com/cambiar/rates-api/internal/core/ports"
	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/cambiar/rates-api/internal/platform/metrics"
)

// NewContainer creates the service container with properly initialized
// dependencies. The ingestion service is built first since the resolver
// backfills through it.
func NewContainer(
	repos *ports.RepositoryProvider,
	official ports.OfficialRatesProvider,
	alternative ports.AlternativeRatesProvider,
	logger *slog.Logger,
	m *metrics.RateMetrics,
) *portssvc.ServiceContainer {
	ingestion := NewRateIngestionService(repos.RateRepo, official, alternative, logger, m)
	return &portssvc.ServiceContainer{
		Resolver:   NewRateResolverService(repos.RateRepo, ingestion, logger, m),
		Ingestion:  ingestion,
		Currencies: NewCurrencyCatalogService(official, logger),
	}
}

// Compile-time interface checks.
var (
	_ portssvc.RateResolverSvc    = (*RateResolverService)(nil)
	_ portssvc.RateIngestionSvc   = (*RateIngestionService)(nil)
	_ portssvc.CurrencyCatalogSvc = (*CurrencyCatalogService)(nil)
)
