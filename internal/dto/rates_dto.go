package dto

import (
	"github.com/shopspring/decimal"
)

// GetRatesQuery defines the query parameters for the rates listing endpoint.
type GetRatesQuery struct {
	Base     string `form:"base,default=USD"`
	Symbols  string `form:"symbols"`
	Date     string `form:"date"`
	RateType string `form:"rate_type"`
}

// GetRateQuery defines the query parameters for the single-pair endpoint.
type GetRateQuery struct {
	Date     string `form:"date"`
	RateType string `form:"rate_type"`
}

// RatesResponse is the provider-compatible rates payload:
// { base, date, rates: {currency: {rate_type: rate}} }.
type RatesResponse struct {
	Base  string                                `json:"base"`
	Date  string                                `json:"date"`
	Rates map[string]map[string]decimal.Decimal `json:"rates"`
}

// RateResponse is the single-pair payload.
type RateResponse struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Date         string          `json:"date"`
	RateType     string          `json:"rateType,omitempty"`
	Rate         decimal.Decimal `json:"rate"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
