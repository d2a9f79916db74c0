// Package openexchangerates implements the primary official-rate provider
// gateway against the OpenExchangeRates HTTP API.
package openexchangerates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/cambiar/rates-api/internal/models"
	"github.com/shopspring/decimal"
)

// Client is an API-key-authenticated OpenExchangeRates client. All rates are
// quoted against the numeraire (USD base plan).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Client with a bounded request timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ratesResponse is the shape shared by the latest and historical endpoints.
type ratesResponse struct {
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
}

// FetchRates fetches rates for the given date, or the latest batch when date
// is nil. The returned date is always derived from the provider's timestamp
// field, which for "latest" requests may differ from the caller's wall-clock
// date.
func (c *Client) FetchRates(ctx context.Context, date *time.Time) (*ports.OfficialRates, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not configured", apperrors.ErrProviderUnavailable)
	}

	endpoint := c.baseURL + "/latest.json"
	if date != nil {
		endpoint = fmt.Sprintf("%s/historical/%s.json", c.baseURL, date.Format(time.DateOnly))
	}
	endpoint += "?app_id=" + url.QueryEscape(c.apiKey)

	var payload ratesResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	batchDate := resolveBatchDate(payload.Timestamp, date)
	rates := make(map[string]decimal.Decimal, len(payload.Rates))
	for currency, rate := range payload.Rates {
		rates[currency] = decimal.NewFromFloat(rate)
	}

	c.logger.Info("Fetched official rates",
		slog.String("date", batchDate.Format(time.DateOnly)),
		slog.Int("count", len(rates)),
	)
	return &ports.OfficialRates{Date: batchDate, Rates: rates}, nil
}

// FetchCurrencies returns the provider's currency code -> name catalog. The
// endpoint is unauthenticated.
func (c *Client) FetchCurrencies(ctx context.Context) (map[string]string, error) {
	currencies := make(map[string]string)
	if err := c.getJSON(ctx, c.baseURL+"/currencies.json", &currencies); err != nil {
		return nil, err
	}
	return currencies, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: API returned status %d: %s", apperrors.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrProviderUnavailable, err)
	}
	return nil
}

// resolveBatchDate converts the provider timestamp to the authoritative batch
// date, falling back to the requested date when the timestamp is missing.
func resolveBatchDate(timestamp int64, requested *time.Time) time.Time {
	if timestamp > 0 {
		return models.DateOnly(time.Unix(timestamp, 0).UTC())
	}
	if requested != nil {
		return models.DateOnly(*requested)
	}
	return models.DateOnly(time.Now().UTC())
}

// Compile-time interface check.
var _ ports.OfficialRatesProvider = (*Client)(nil)
