package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RateMetrics contains the Prometheus instruments for the rates engine. A nil
// *RateMetrics is valid and records nothing, so tests can pass nil.
type RateMetrics struct {
	ProviderFetchTotal *prometheus.CounterVec
	RatesStoredTotal   *prometheus.CounterVec
	ResolveTotal       *prometheus.CounterVec
	ResolveDuration    prometheus.Histogram
}

// NewRateMetrics registers the rate metrics against the given registerer.
func NewRateMetrics(reg prometheus.Registerer) *RateMetrics {
	factory := promauto.With(reg)
	return &RateMetrics{
		ProviderFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_provider_fetch_total",
				Help: "Upstream provider fetch attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		RatesStoredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_stored_total",
				Help: "Rate records written to the store by source",
			},
			[]string{"source"},
		),
		ResolveTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_resolve_total",
				Help: "Rate resolutions by outcome (hit, partial, empty)",
			},
			[]string{"outcome"},
		),
		ResolveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rates_resolve_duration_seconds",
				Help:    "Duration of rate resolutions including backfill",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// ObserveProviderFetch counts one provider call.
func (m *RateMetrics) ObserveProviderFetch(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.ProviderFetchTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveRatesStored counts records written for a source.
func (m *RateMetrics) ObserveRatesStored(source string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.RatesStoredTotal.WithLabelValues(source).Add(float64(count))
}

// ObserveResolve records one resolution with its duration and outcome.
func (m *RateMetrics) ObserveResolve(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ResolveTotal.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(elapsed.Seconds())
}
