package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateResolverSvc defines the read side of the rates engine: turning a
// (base, targets, date, rate type) request into a complete rates mapping,
// filling gaps through derived inverses, pivot interpolation and best-effort
// backfill.
type RateResolverSvc interface {
	// ResolveRates returns target currency -> rate type -> rate. Currencies
	// with no data after lookup, interpolation and one backfill attempt are
	// omitted, not errors. A nil symbols slice means "all reachable".
	ResolveRates(ctx context.Context, base string, symbols []string, date time.Time, rateType string) (map[string]map[string]decimal.Decimal, error)

	// ResolveRate returns the single rate for a pair. With an empty rateType
	// the default priority ordering picks among the available types.
	ResolveRate(ctx context.Context, from, to string, date time.Time, rateType string) (decimal.Decimal, error)

	// ResolveLatestDate returns the default resolution date: the store's
	// latest known date, triggering an official backfill first when the store
	// is entirely empty.
	ResolveLatestDate(ctx context.Context) (time.Time, error)
}

// RateIngestionSvc defines the write side: pulling batches from the upstream
// providers into the store.
type RateIngestionSvc interface {
	// IngestOfficial fetches official rates (latest when date is nil) and
	// stores them under the provider's authoritative date. Returns the number
	// of records stored.
	IngestOfficial(ctx context.Context, date *time.Time) (int, error)

	// IngestAlternative fetches alternative-market quotes around the given
	// date, stores them as directional records and carries Friday quotes onto
	// the weekend. Returns the number of records stored.
	IngestAlternative(ctx context.Context, center time.Time) (int, error)
}

// CurrencyCatalogSvc exposes the provider's currency catalog.
type CurrencyCatalogSvc interface {
	ListCurrencies(ctx context.Context) (map[string]string, error)
}

// ServiceContainer holds instances of all the application services. This is
// the main entry point for accessing service functionality and is used
// throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Resolver   RateResolverSvc
	Ingestion  RateIngestionSvc
	Currencies CurrencyCatalogSvc
}
