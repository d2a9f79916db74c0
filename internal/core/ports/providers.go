package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OfficialRates is one batch of rates quoted against the numeraire currency.
// Date is the provider's authoritative date for the batch, derived from its
// own timestamp; it may differ from the caller's wall-clock date.
type OfficialRates struct {
	Date  time.Time
	Rates map[string]decimal.Decimal
}

// OfficialRatesProvider fetches official rates from the primary upstream
// source. A nil date requests the provider's latest batch. Transport, timeout
// and parse failures are returned wrapped in apperrors.ErrProviderUnavailable.
type OfficialRatesProvider interface {
	FetchRates(ctx context.Context, date *time.Time) (*OfficialRates, error)

	// FetchCurrencies returns the provider's currency catalog (code -> name).
	FetchCurrencies(ctx context.Context) (map[string]string, error)
}

// BuySell is one day's quote from the alternative market.
type BuySell struct {
	Buy  decimal.Decimal
	Sell decimal.Decimal
}

// AlternativeRatesProvider fetches alternative-market quotes for the one
// currency pair that market trades, covering roughly a month centered on the
// given date. Keys are YYYY-MM-DD dates. Failures are wrapped in
// apperrors.ErrProviderUnavailable.
type AlternativeRatesProvider interface {
	FetchRange(ctx context.Context, center time.Time) (map[string]BuySell, error)
}
