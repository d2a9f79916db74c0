package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known rate types. The set is open: providers may introduce new tags and
// the store accepts any non-empty string.
const (
	RateTypeOfficial = "official"
	RateTypeBlue     = "blue"
	RateTypeMEP      = "mep"
	RateTypeCCL      = "ccl"
)

// NumeraireCurrency is the currency every official rate is quoted against and
// the pivot used for cross-rate interpolation.
const NumeraireCurrency = "USD"

// BlueMarketCurrency is the one currency the alternative-market provider
// quotes against the numeraire.
const BlueMarketCurrency = "ARS"

// RateRecord is an observed exchange rate fact. It is uniquely keyed by
// (FromCurrency, ToCurrency, RateDate, RateType); a later write with the same
// key replaces the earlier one.
type RateRecord struct {
	RateID       string          `json:"rateID"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	RateType     string          `json:"rateType"`
	RateDate     time.Time       `json:"rateDate"` // normalized to UTC midnight
	Source       string          `json:"source"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// RateKey identifies a record within the store.
type RateKey struct {
	FromCurrency string
	ToCurrency   string
	RateDate     string // YYYY-MM-DD
	RateType     string
}

// Key returns the unique storage key of the record.
func (r RateRecord) Key() RateKey {
	return RateKey{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		RateDate:     r.RateDate.Format(time.DateOnly),
		RateType:     r.RateType,
	}
}

// DateOnly normalizes a timestamp to the UTC midnight of its calendar day, the
// canonical form for RateDate values and date lookups.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
