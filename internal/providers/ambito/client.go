// Package ambito implements the secondary alternative-market provider gateway
// against the ambito.com historical blue-dollar series.
package ambito

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	"github.com/cambiar/rates-api/internal/core/ports"
	"github.com/shopspring/decimal"
)

// rangeDays is the reach of a fetch on each side of the center date; the
// resulting window spans roughly a month for good cache coverage.
const rangeDays = 15

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client fetches the blue-dollar quote series. The API returns a tabular
// payload: a header row followed by [date(DD/MM/YYYY), buyText, sellText]
// rows in locale-formatted decimals ('.' thousands, ',' decimal).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchRange fetches quotes for a window centered on the given date. Rows that
// fail to parse are skipped; an entirely unparsable payload is an error.
func (c *Client) FetchRange(ctx context.Context, center time.Time) (map[string]ports.BuySell, error) {
	from := center.AddDate(0, 0, -rangeDays).Format(time.DateOnly)
	to := center.AddDate(0, 0, rangeDays).Format(time.DateOnly)
	endpoint := fmt.Sprintf("%s/%s/%s", c.baseURL, from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrProviderUnavailable, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: response has no data rows", apperrors.ErrProviderUnavailable)
	}

	// First row is the column header.
	series := make(map[string]ports.BuySell)
	for _, row := range rows[1:] {
		if len(row) != 3 {
			continue
		}
		date, err := parseSeriesDate(row[0])
		if err != nil {
			c.logger.Warn("Skipping row with malformed date", slog.String("value", row[0]))
			continue
		}
		buy, errBuy := parseLocaleDecimal(row[1])
		sell, errSell := parseLocaleDecimal(row[2])
		if errBuy != nil || errSell != nil {
			c.logger.Warn("Skipping row with malformed quote",
				slog.String("date", date),
				slog.String("buy", row[1]),
				slog.String("sell", row[2]),
			)
			continue
		}
		series[date] = ports.BuySell{Buy: buy, Sell: sell}
	}

	c.logger.Info("Fetched alternative-market rates",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("days", len(series)),
	)
	return series, nil
}

// parseSeriesDate converts DD/MM/YYYY to YYYY-MM-DD.
func parseSeriesDate(value string) (string, error) {
	parsed, err := time.Parse("02/01/2006", strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	return parsed.Format(time.DateOnly), nil
}

// parseLocaleDecimal parses values like "1.490,50": '.' is the thousands
// separator and ',' the decimal mark.
func parseLocaleDecimal(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return decimal.NewFromString(cleaned)
}

// Compile-time interface check.
var _ ports.AlternativeRatesProvider = (*Client)(nil)
