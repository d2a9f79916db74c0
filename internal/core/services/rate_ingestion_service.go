package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/cambiar/rates-api/internal/models"
	"github.com/cambiar/rates-api/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	sourceOfficial      = "openexchangerates"
	sourceAlternative   = "ambito"
	weekendSourceSuffix = " (weekend)"
)

// RateIngestionService pulls rate batches from the upstream providers and
// writes them into the store as validated RateRecords.
type RateIngestionService struct {
	rateRepo    ports.RateRepository
	official    ports.OfficialRatesProvider
	alternative ports.AlternativeRatesProvider
	logger      *slog.Logger
	metrics     *metrics.RateMetrics
}

// NewRateIngestionService creates a new RateIngestionService.
func NewRateIngestionService(
	rateRepo ports.RateRepository,
	official ports.OfficialRatesProvider,
	alternative ports.AlternativeRatesProvider,
	logger *slog.Logger,
	m *metrics.RateMetrics,
) *RateIngestionService {
	return &RateIngestionService{
		rateRepo:    rateRepo,
		official:    official,
		alternative: alternative,
		logger:      logger,
		metrics:     m,
	}
}

// IngestOfficial fetches official numeraire-based rates and stores them. The
// stored date is always the provider's authoritative date, never the caller's
// wall clock. Non-positive rates are discarded, not stored.
func (s *RateIngestionService) IngestOfficial(ctx context.Context, date *time.Time) (int, error) {
	batch, err := s.official.FetchRates(ctx, date)
	s.metrics.ObserveProviderFetch(sourceOfficial, err)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch official rates: %w", err)
	}

	fetchedAt := time.Now().UTC()
	rateDate := models.DateOnly(batch.Date)
	records := make([]models.RateRecord, 0, len(batch.Rates))
	for currency, rate := range batch.Rates {
		if currency == models.NumeraireCurrency {
			continue
		}
		if !rate.IsPositive() {
			s.logger.Warn("Discarding non-positive official rate",
				slog.String("currency", currency),
				slog.String("rate", rate.String()),
			)
			continue
		}
		records = append(records, models.RateRecord{
			RateID:       uuid.NewString(),
			FromCurrency: models.NumeraireCurrency,
			ToCurrency:   currency,
			Rate:         rate,
			RateType:     models.RateTypeOfficial,
			RateDate:     rateDate,
			Source:       sourceOfficial,
			FetchedAt:    fetchedAt,
		})
	}

	if err := s.rateRepo.SaveRates(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store official rates: %w", err)
	}
	s.metrics.ObserveRatesStored(sourceOfficial, len(records))
	s.logger.Info("Stored official rates",
		slog.String("date", rateDate.Format(time.DateOnly)),
		slog.Int("count", len(records)),
	)
	return len(records), nil
}

// IngestAlternative fetches the alternative-market quote series around the
// given date and stores it as directional records: buy quotes as
// numeraire -> blue-market currency, reciprocal sell quotes the other way.
// Friday quotes are additionally carried onto the following Saturday and
// Sunday with an annotated source, once per batch.
func (s *RateIngestionService) IngestAlternative(ctx context.Context, center time.Time) (int, error) {
	series, err := s.alternative.FetchRange(ctx, center)
	s.metrics.ObserveProviderFetch(sourceAlternative, err)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch alternative rates: %w", err)
	}

	fetchedAt := time.Now().UTC()
	var records []models.RateRecord
	for dateStr, quote := range series {
		day, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			s.logger.Warn("Skipping alternative quote with malformed date", slog.String("date", dateStr))
			continue
		}
		records = append(records, s.directionalRecords(day, quote, sourceAlternative, fetchedAt)...)
	}

	// Weekend carry-forward: the market is closed on weekends, so the Friday
	// quote applies. Days already present in the batch are never overwritten.
	for dateStr, quote := range series {
		day, err := time.Parse(time.DateOnly, dateStr)
		if err != nil || day.Weekday() != time.Friday {
			continue
		}
		for offset := 1; offset <= 2; offset++ {
			weekendDay := day.AddDate(0, 0, offset)
			if _, present := series[weekendDay.Format(time.DateOnly)]; present {
				continue
			}
			records = append(records, s.directionalRecords(weekendDay, quote, sourceAlternative+weekendSourceSuffix, fetchedAt)...)
		}
	}

	if err := s.rateRepo.SaveRates(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to store alternative rates: %w", err)
	}
	s.metrics.ObserveRatesStored(sourceAlternative, len(records))
	s.logger.Info("Stored alternative rates",
		slog.String("center", center.Format(time.DateOnly)),
		slog.Int("count", len(records)),
	)
	return len(records), nil
}

// directionalRecords converts one day's buy/sell quote into up to two stored
// records. A non-positive leg is discarded without affecting the other.
func (s *RateIngestionService) directionalRecords(day time.Time, quote ports.BuySell, source string, fetchedAt time.Time) []models.RateRecord {
	day = models.DateOnly(day)
	var records []models.RateRecord

	if quote.Buy.IsPositive() {
		records = append(records, models.RateRecord{
			RateID:       uuid.NewString(),
			FromCurrency: models.NumeraireCurrency,
			ToCurrency:   models.BlueMarketCurrency,
			Rate:         quote.Buy,
			RateType:     models.RateTypeBlue,
			RateDate:     day,
			Source:       source,
			FetchedAt:    fetchedAt,
		})
	} else {
		s.logger.Warn("Discarding non-positive buy quote", slog.String("date", day.Format(time.DateOnly)))
	}

	if quote.Sell.IsPositive() {
		records = append(records, models.RateRecord{
			RateID:       uuid.NewString(),
			FromCurrency: models.BlueMarketCurrency,
			ToCurrency:   models.NumeraireCurrency,
			Rate:         decimal.NewFromInt(1).Div(quote.Sell),
			RateType:     models.RateTypeBlue,
			RateDate:     day,
			Source:       source,
			FetchedAt:    fetchedAt,
		})
	} else {
		s.logger.Warn("Discarding non-positive sell quote", slog.String("date", day.Format(time.DateOnly)))
	}

	return records
}
