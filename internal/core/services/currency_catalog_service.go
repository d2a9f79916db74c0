package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cambiar/rates-api/internal/core/ports"
)

// CurrencyCatalogService proxies the primary provider's currency catalog.
type CurrencyCatalogService struct {
	official ports.OfficialRatesProvider
	logger   *slog.Logger
}

// NewCurrencyCatalogService creates a new CurrencyCatalogService.
func NewCurrencyCatalogService(official ports.OfficialRatesProvider, logger *slog.Logger) *CurrencyCatalogService {
	return &CurrencyCatalogService{official: official, logger: logger}
}

// ListCurrencies returns the provider's currency code -> name mapping.
func (s *CurrencyCatalogService) ListCurrencies(ctx context.Context) (map[string]string, error) {
	currencies, err := s.official.FetchCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	return currencies, nil
}
