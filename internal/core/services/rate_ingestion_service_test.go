package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/cambiar/rates-api/internal/core/services"
	"github.com/cambiar/rates-api/internal/models"
	"github.com/cambiar/rates-api/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockOfficialProvider is a mock for the OfficialRatesProvider interface.
type MockOfficialProvider struct {
	mock.Mock
}

func (m *MockOfficialProvider) FetchRates(ctx context.Context, date *time.Time) (*ports.OfficialRates, error) {
	args := m.Called(ctx, date)
	if batch, ok := args.Get(0).(*ports.OfficialRates); ok {
		return batch, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOfficialProvider) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if catalog, ok := args.Get(0).(map[string]string); ok {
		return catalog, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAlternativeProvider is a mock for the AlternativeRatesProvider interface.
type MockAlternativeProvider struct {
	mock.Mock
}

func (m *MockAlternativeProvider) FetchRange(ctx context.Context, center time.Time) (map[string]ports.BuySell, error) {
	args := m.Called(ctx, center)
	if series, ok := args.Get(0).(map[string]ports.BuySell); ok {
		return series, args.Error(1)
	}
	return nil, args.Error(1)
}

type RateIngestionServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	repo        *memory.RateRepository
	official    *MockOfficialProvider
	alternative *MockAlternativeProvider
	service     *services.RateIngestionService
}

func (s *RateIngestionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = memory.NewRateRepository()
	s.official = new(MockOfficialProvider)
	s.alternative = new(MockAlternativeProvider)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = services.NewRateIngestionService(s.repo, s.official, s.alternative, logger, nil)
}

func (s *RateIngestionServiceTestSuite) ratesFor(base string, date time.Time) map[models.RateKey]models.RateRecord {
	records, err := s.repo.ListRatesTouching(s.ctx, base, date)
	s.Require().NoError(err)
	byKey := make(map[models.RateKey]models.RateRecord, len(records))
	for _, rec := range records {
		byKey[rec.Key()] = rec
	}
	return byKey
}

func (s *RateIngestionServiceTestSuite) TestIngestOfficial_StoresUnderProviderDate() {
	requested := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	providerDate := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	s.official.On("FetchRates", mock.Anything, &requested).Return(&ports.OfficialRates{
		Date: providerDate,
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.NewFromFloat(0.85),
			"USD": decimal.NewFromInt(1),
			"XXX": decimal.NewFromInt(-1),
		},
	}, nil).Once()

	count, err := s.service.IngestOfficial(s.ctx, &requested)

	s.Require().NoError(err)
	s.Equal(1, count, "self-rate and non-positive rate must be discarded")

	s.Empty(s.ratesFor("USD", requested), "nothing may be stored under the requested date")

	stored := s.ratesFor("USD", providerDate)
	s.Require().Len(stored, 1)
	for _, rec := range stored {
		s.Equal("USD", rec.FromCurrency)
		s.Equal("EUR", rec.ToCurrency)
		s.Equal(models.RateTypeOfficial, rec.RateType)
		s.Equal("openexchangerates", rec.Source)
		s.True(rec.Rate.Equal(decimal.NewFromFloat(0.85)))
	}
	s.official.AssertExpectations(s.T())
}

func (s *RateIngestionServiceTestSuite) TestIngestOfficial_UpsertReplacesSameKey() {
	date := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	s.official.On("FetchRates", mock.Anything, mock.Anything).Return(&ports.OfficialRates{
		Date:  date,
		Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.85)},
	}, nil).Once()
	s.official.On("FetchRates", mock.Anything, mock.Anything).Return(&ports.OfficialRates{
		Date:  date,
		Rates: map[string]decimal.Decimal{"EUR": decimal.NewFromFloat(0.86)},
	}, nil).Once()

	_, err := s.service.IngestOfficial(s.ctx, nil)
	s.Require().NoError(err)
	_, err = s.service.IngestOfficial(s.ctx, nil)
	s.Require().NoError(err)

	stored := s.ratesFor("USD", date)
	s.Require().Len(stored, 1, "same (pair, date, type) must be a single record")
	for _, rec := range stored {
		s.True(rec.Rate.Equal(decimal.NewFromFloat(0.86)), "last write must win")
	}
}

func (s *RateIngestionServiceTestSuite) TestIngestOfficial_ProviderFailure() {
	s.official.On("FetchRates", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrProviderUnavailable).Once()

	count, err := s.service.IngestOfficial(s.ctx, nil)

	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrProviderUnavailable))
	s.Zero(count)
}

func (s *RateIngestionServiceTestSuite) TestIngestAlternative_DirectionalRecords() {
	thursday := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	s.alternative.On("FetchRange", mock.Anything, thursday).Return(map[string]ports.BuySell{
		"2025-01-16": {Buy: decimal.NewFromInt(1200), Sell: decimal.NewFromInt(1250)},
	}, nil).Once()

	count, err := s.service.IngestAlternative(s.ctx, thursday)

	s.Require().NoError(err)
	s.Equal(2, count)

	stored := s.ratesFor("USD", thursday)
	s.Require().Len(stored, 2)

	buy := stored[models.RateKey{FromCurrency: "USD", ToCurrency: "ARS", RateDate: "2025-01-16", RateType: models.RateTypeBlue}]
	s.True(buy.Rate.Equal(decimal.NewFromInt(1200)))
	s.Equal("ambito", buy.Source)

	sell := stored[models.RateKey{FromCurrency: "ARS", ToCurrency: "USD", RateDate: "2025-01-16", RateType: models.RateTypeBlue}]
	s.InEpsilon(1.0/1250.0, sell.Rate.InexactFloat64(), 1e-9)
}

func (s *RateIngestionServiceTestSuite) TestIngestAlternative_WeekendCarryForward() {
	friday := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	s.alternative.On("FetchRange", mock.Anything, friday).Return(map[string]ports.BuySell{
		"2025-01-17": {Buy: decimal.NewFromInt(1230), Sell: decimal.NewFromInt(1250)},
	}, nil).Once()

	count, err := s.service.IngestAlternative(s.ctx, friday)

	s.Require().NoError(err)
	s.Equal(6, count, "Friday plus two carried weekend days, two records each")

	saturday := s.ratesFor("USD", friday.AddDate(0, 0, 1))
	sunday := s.ratesFor("USD", friday.AddDate(0, 0, 2))
	s.Require().Len(saturday, 2)
	s.Require().Len(sunday, 2)

	carried := saturday[models.RateKey{FromCurrency: "USD", ToCurrency: "ARS", RateDate: "2025-01-18", RateType: models.RateTypeBlue}]
	s.Equal("ambito (weekend)", carried.Source)
	s.True(carried.Rate.Equal(decimal.NewFromInt(1230)))
}

func (s *RateIngestionServiceTestSuite) TestIngestAlternative_CarryNeverOverwritesQuotedDay() {
	friday := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	s.alternative.On("FetchRange", mock.Anything, friday).Return(map[string]ports.BuySell{
		"2025-01-17": {Buy: decimal.NewFromInt(1230), Sell: decimal.NewFromInt(1250)},
		"2025-01-18": {Buy: decimal.NewFromInt(1300), Sell: decimal.NewFromInt(1320)},
	}, nil).Once()

	_, err := s.service.IngestAlternative(s.ctx, friday)
	s.Require().NoError(err)

	saturday := s.ratesFor("USD", friday.AddDate(0, 0, 1))
	quoted := saturday[models.RateKey{FromCurrency: "USD", ToCurrency: "ARS", RateDate: "2025-01-18", RateType: models.RateTypeBlue}]
	s.Equal("ambito", quoted.Source, "a real Saturday quote must survive the Friday carry")
	s.True(quoted.Rate.Equal(decimal.NewFromInt(1300)))

	// Sunday has no quote of its own and still gets the carried Friday rate.
	sunday := s.ratesFor("USD", friday.AddDate(0, 0, 2))
	s.Require().Len(sunday, 2)
}

func (s *RateIngestionServiceTestSuite) TestIngestAlternative_DiscardsNonPositiveLegs() {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	s.alternative.On("FetchRange", mock.Anything, monday).Return(map[string]ports.BuySell{
		"2025-01-13": {Buy: decimal.Zero, Sell: decimal.NewFromInt(1250)},
	}, nil).Once()

	count, err := s.service.IngestAlternative(s.ctx, monday)

	s.Require().NoError(err)
	s.Equal(1, count, "only the positive sell leg may be stored")

	stored := s.ratesFor("ARS", monday)
	s.Require().Len(stored, 1)
}

func (s *RateIngestionServiceTestSuite) TestIngestAlternative_ProviderFailure() {
	center := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	s.alternative.On("FetchRange", mock.Anything, center).
		Return(nil, apperrors.ErrProviderUnavailable).Once()

	count, err := s.service.IngestAlternative(s.ctx, center)

	s.Require().Error(err)
	s.True(errors.Is(err, apperrors.ErrProviderUnavailable))
	s.Zero(count)
}

func TestRateIngestionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateIngestionServiceTestSuite))
}
