package rateindex_test

import (
	"testing"
	"time"

	"github.com/cambiar/rates-api/internal/models"
	"github.com/cambiar/rates-api/internal/utils/rateindex"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)

func record(from, to string, rate float64, rateType string) models.RateRecord {
	return models.RateRecord{
		RateID:       uuid.NewString(),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.NewFromFloat(rate),
		RateType:     rateType,
		RateDate:     testDate,
		Source:       "test",
		FetchedAt:    time.Now().UTC(),
	}
}

func TestRatesForBase_DerivesInverseWhenDirectAbsent(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "ARS", 1463.28, models.RateTypeOfficial),
	}

	view := rateindex.RatesForBase("ARS", records)

	require.Contains(t, view, "USD")
	entry := view["USD"][models.RateTypeOfficial]
	assert.True(t, entry.Derived)
	assert.Equal(t, "test (computed inverse)", entry.Source)
	assert.InEpsilon(t, 1.0/1463.28, entry.Rate.InexactFloat64(), 1e-6)
}

func TestRatesForBase_DirectTakesPrecedenceOverInverse(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "EUR", 0.85, models.RateTypeOfficial),
		record("EUR", "USD", 1.20, models.RateTypeOfficial),
	}

	view := rateindex.RatesForBase("EUR", records)

	require.Contains(t, view, "USD")
	entry := view["USD"][models.RateTypeOfficial]
	assert.False(t, entry.Derived)
	assert.True(t, entry.Rate.Equal(decimal.NewFromFloat(1.20)),
		"stored rate must win over the computed inverse, got %s", entry.Rate)
}

func TestRatesForBase_InverseShadowingIsPerRateType(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "ARS", 1463.28, models.RateTypeOfficial),
		record("USD", "ARS", 1510.00, models.RateTypeBlue),
		record("ARS", "USD", 0.00069, models.RateTypeBlue),
	}

	view := rateindex.RatesForBase("ARS", records)

	require.Contains(t, view, "USD")
	assert.True(t, view["USD"][models.RateTypeBlue].Rate.Equal(decimal.NewFromFloat(0.00069)))
	assert.True(t, view["USD"][models.RateTypeOfficial].Derived)
}

func TestRatesForBase_MultiTypeFanOut(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "ARS", 1463.28, models.RateTypeOfficial),
		record("USD", "ARS", 1510.00, models.RateTypeBlue),
		record("USD", "ARS", 1496.60, models.RateTypeCCL),
	}

	direct := rateindex.RatesForBase("USD", records)
	require.Len(t, direct["ARS"], 3)

	inverse := rateindex.RatesForBase("ARS", records)
	require.Len(t, inverse["USD"], 3)
	assert.InEpsilon(t, 1.0/1510.00, inverse["USD"][models.RateTypeBlue].Rate.InexactFloat64(), 1e-6)
	assert.InEpsilon(t, 1.0/1496.60, inverse["USD"][models.RateTypeCCL].Rate.InexactFloat64(), 1e-6)
}

func TestRatesForBase_IgnoresNonPositiveRates(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "XXX", 0, models.RateTypeOfficial),
		record("YYY", "USD", -2, models.RateTypeOfficial),
	}

	view := rateindex.RatesForBase("USD", records)
	assert.Empty(t, view)
}

func TestFilterType(t *testing.T) {
	records := []models.RateRecord{
		record("USD", "ARS", 1463.28, models.RateTypeOfficial),
		record("USD", "ARS", 1510.00, models.RateTypeBlue),
	}

	filtered := rateindex.FilterType(records, models.RateTypeBlue)
	require.Len(t, filtered, 1)
	assert.Equal(t, models.RateTypeBlue, filtered[0].RateType)

	assert.Len(t, rateindex.FilterType(records, ""), 2)
}

func TestPreferredType(t *testing.T) {
	preferred, ok := rateindex.PreferredType([]string{"blue", "official", "mep"})
	require.True(t, ok)
	assert.Equal(t, "official", preferred)

	// Unranked types sort after all ranked ones.
	preferred, ok = rateindex.PreferredType([]string{"crypto", "ccl"})
	require.True(t, ok)
	assert.Equal(t, "ccl", preferred)

	_, ok = rateindex.PreferredType(nil)
	assert.False(t, ok)
}
