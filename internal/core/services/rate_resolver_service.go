package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/core/ports"
	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/cambiar/rates-api/internal/models"
	"github.com/cambiar/rates-api/internal/platform/metrics"
	"github.com/cambiar/rates-api/internal/utils/rateindex"
	"github.com/shopspring/decimal"
)

// RateResolverService turns (base, targets, date, rate type) requests into
// complete rates mappings. Gaps are filled by derived inverse rates, pivot
// interpolation through the numeraire currency, and best-effort backfill from
// the providers; provider failures degrade to whatever is already cached.
type RateResolverService struct {
	rateRepo  ports.RateRepository
	ingestion portssvc.RateIngestionSvc
	logger    *slog.Logger
	metrics   *metrics.RateMetrics
}

// NewRateResolverService creates a new RateResolverService.
func NewRateResolverService(
	rateRepo ports.RateRepository,
	ingestion portssvc.RateIngestionSvc,
	logger *slog.Logger,
	m *metrics.RateMetrics,
) *RateResolverService {
	return &RateResolverService{
		rateRepo:  rateRepo,
		ingestion: ingestion,
		logger:    logger,
		metrics:   m,
	}
}

// ResolveRates implements the resolution algorithm. Only store failures
// propagate as errors; currencies that remain unknown after interpolation and
// one backfill attempt are omitted from the result.
func (s *RateResolverService) ResolveRates(ctx context.Context, base string, symbols []string, date time.Time, rateType string) (map[string]map[string]decimal.Decimal, error) {
	start := time.Now()
	base = strings.ToUpper(base)
	if len(base) != 3 {
		return nil, fmt.Errorf("%w: base currency code must be 3 letters", apperrors.ErrValidation)
	}
	date = models.DateOnly(date)
	for i := range symbols {
		symbols[i] = strings.ToUpper(symbols[i])
	}

	logger := s.logger.With(
		slog.String("base", base),
		slog.String("date", date.Format(time.DateOnly)),
	)

	// Official rates for the numeraire are the backbone of every resolution;
	// backfill them before reading when the date has none.
	if base == models.NumeraireCurrency {
		official, err := s.baseView(ctx, base, date, models.RateTypeOfficial)
		if err != nil {
			return nil, err
		}
		if len(official) == 0 {
			logger.Info("No official rates for date, backfilling from provider")
			if _, err := s.ingestion.IngestOfficial(ctx, &date); err != nil {
				logger.Warn("Official backfill failed", slog.String("error", err.Error()))
			}
		}
	}

	// The alternative market quotes one pair; backfill it when the request
	// involves that pair and the store has no blue quote for the date.
	if s.blueRelevant(base, symbols) {
		blue, err := s.baseView(ctx, models.NumeraireCurrency, date, models.RateTypeBlue)
		if err != nil {
			return nil, err
		}
		if _, ok := blue[models.BlueMarketCurrency]; !ok {
			logger.Info("No alternative-market rates for date, backfilling from provider")
			if _, err := s.ingestion.IngestAlternative(ctx, date); err != nil {
				logger.Warn("Alternative backfill failed", slog.String("error", err.Error()))
			}
		}
	}

	allBase, err := s.baseView(ctx, base, date, rateType)
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[string]decimal.Decimal)
	if symbols == nil {
		for currency, entries := range allBase {
			result[currency] = rateindex.Rates(entries)
		}
	} else {
		for _, symbol := range symbols {
			if entries, ok := allBase[symbol]; ok {
				result[symbol] = rateindex.Rates(entries)
			}
		}
	}

	// Pivot interpolation fills only what projection left missing; it never
	// overrides a directly available rate.
	if len(symbols) > 0 && len(result) < len(symbols) {
		var missing []string
		for _, symbol := range symbols {
			if _, ok := result[symbol]; !ok {
				missing = append(missing, symbol)
			}
		}
		logger.Info("Interpolating missing symbols", slog.Any("symbols", missing))
		interpolated, err := s.interpolateViaNumeraire(ctx, allBase, missing, date, rateType)
		if err != nil {
			return nil, err
		}
		for currency, rates := range interpolated {
			result[currency] = rates
		}
	}

	s.metrics.ObserveResolve(resolveOutcome(len(result), len(symbols)), time.Since(start))
	logger.Info("Resolved rates", slog.Int("currencies", len(result)))
	return result, nil
}

// ResolveRate returns the single rate for a pair. With an empty rateType the
// default priority ordering picks among the available types; a specific
// rateType never falls back to another one.
func (s *RateResolverService) ResolveRate(ctx context.Context, from, to string, date time.Time, rateType string) (decimal.Decimal, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	if len(from) != 3 || len(to) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	rates, err := s.ResolveRates(ctx, from, []string{to}, date, rateType)
	if err != nil {
		return decimal.Zero, err
	}
	available, ok := rates[to]
	if !ok || len(available) == 0 {
		return decimal.Zero, apperrors.NewNotFoundError("no rate for " + from + " to " + to)
	}
	if rateType != "" {
		rate, ok := available[rateType]
		if !ok {
			return decimal.Zero, apperrors.NewNotFoundError("no " + rateType + " rate for " + from + " to " + to)
		}
		return rate, nil
	}

	types := make([]string, 0, len(available))
	for t := range available {
		types = append(types, t)
	}
	preferred, _ := rateindex.PreferredType(types)
	return available[preferred], nil
}

// ResolveLatestDate returns the store's latest known date, backfilling the
// latest official batch first when the store is entirely empty.
func (s *RateResolverService) ResolveLatestDate(ctx context.Context) (time.Time, error) {
	latest, err := s.rateRepo.LatestRateDate(ctx)
	if err == nil {
		return latest, nil
	}
	if !errors.Is(err, apperrors.ErrNoData) {
		return time.Time{}, fmt.Errorf("failed to read latest rate date: %w", err)
	}

	s.logger.Info("Store is empty, fetching latest official rates")
	if _, err := s.ingestion.IngestOfficial(ctx, nil); err != nil {
		s.logger.Warn("Initial official fetch failed", slog.String("error", err.Error()))
	}
	latest, err = s.rateRepo.LatestRateDate(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("no rates available: %w", err)
	}
	return latest, nil
}

// baseView reads the stored records touching a currency on a date and builds
// the bidirectional view, optionally restricted to one rate type.
func (s *RateResolverService) baseView(ctx context.Context, base string, date time.Time, rateType string) (map[string]map[string]rateindex.Entry, error) {
	records, err := s.rateRepo.ListRatesTouching(ctx, base, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates for %s: %w", base, err)
	}
	return rateindex.RatesForBase(base, rateindex.FilterType(records, rateType)), nil
}

// blueRelevant reports whether the request involves the alternative-market
// pair: the base or a requested target must be the numeraire or blue-market
// currency, and the blue-market currency must actually be in the request.
func (s *RateResolverService) blueRelevant(base string, symbols []string) bool {
	involved := base == models.NumeraireCurrency || base == models.BlueMarketCurrency
	for _, symbol := range symbols {
		if symbol == models.NumeraireCurrency || symbol == models.BlueMarketCurrency {
			involved = true
		}
	}
	if !involved {
		return false
	}
	if symbols == nil || base == models.BlueMarketCurrency {
		return true
	}
	for _, symbol := range symbols {
		if symbol == models.BlueMarketCurrency {
			return true
		}
	}
	return false
}

// interpolateViaNumeraire composes base -> numeraire and numeraire -> target
// rates per rate type. A type present on only one leg is skipped for that
// target; without any base -> numeraire entry interpolation is skipped
// entirely. An empty numeraire view triggers one best-effort backfill and a
// single retry.
func (s *RateResolverService) interpolateViaNumeraire(ctx context.Context, allBase map[string]map[string]rateindex.Entry, targets []string, date time.Time, rateType string) (map[string]map[string]decimal.Decimal, error) {
	baseToNumeraire := allBase[models.NumeraireCurrency]
	if len(baseToNumeraire) == 0 {
		return nil, nil
	}

	numeraireView, err := s.baseView(ctx, models.NumeraireCurrency, date, rateType)
	if err != nil {
		return nil, err
	}
	if len(numeraireView) == 0 {
		if _, err := s.ingestion.IngestOfficial(ctx, &date); err != nil {
			s.logger.Warn("Backfill for interpolation failed", slog.String("error", err.Error()))
		}
		numeraireView, err = s.baseView(ctx, models.NumeraireCurrency, date, rateType)
		if err != nil {
			return nil, err
		}
	}
	if len(numeraireView) == 0 {
		return nil, nil
	}

	result := make(map[string]map[string]decimal.Decimal)
	for _, target := range targets {
		numeraireToTarget, ok := numeraireView[target]
		if !ok {
			continue
		}
		rates := make(map[string]decimal.Decimal)
		for t, baseLeg := range baseToNumeraire {
			targetLeg, ok := numeraireToTarget[t]
			if !ok {
				s.logger.Debug("Rate type present on one interpolation leg only",
					slog.String("target", target),
					slog.String("rate_type", t),
				)
				continue
			}
			rates[t] = baseLeg.Rate.Mul(targetLeg.Rate)
		}
		if len(rates) > 0 {
			result[target] = rates
		}
	}
	return result, nil
}

func resolveOutcome(resolved, requested int) string {
	switch {
	case resolved == 0:
		return "empty"
	case requested > 0 && resolved < requested:
		return "partial"
	default:
		return "hit"
	}
}
