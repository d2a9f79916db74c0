package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cambiar/rates-api/internal/apperrors"
	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/cambiar/rates-api/internal/dto"
	"github.com/cambiar/rates-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ratesHandler handles HTTP requests related to exchange rates.
type ratesHandler struct {
	resolver portssvc.RateResolverSvc
}

// newRatesHandler creates a new ratesHandler.
func newRatesHandler(resolver portssvc.RateResolverSvc) *ratesHandler {
	return &ratesHandler{resolver: resolver}
}

// registerRateRoutes registers routes related to exchange rates.
func registerRateRoutes(rg *gin.RouterGroup, resolver portssvc.RateResolverSvc) {
	h := newRatesHandler(resolver)

	rg.GET("/rates", h.getRates)
	rg.GET("/rates/:from/:to", h.getRate)
}

// getRates godoc
// @Summary Get exchange rates for a base currency
// @Description Returns rates from the base to target currencies, grouped by rate type. Missing data is backfilled from the upstream providers on demand.
// @Tags rates
// @Produce json
// @Param base query string false "Base currency code" default(USD)
// @Param symbols query string false "Comma-separated target currency codes; all reachable currencies if omitted"
// @Param date query string false "Date in YYYY-MM-DD format; defaults to the latest available"
// @Param rate_type query string false "Rate type (official, blue, mep, ccl); all types if omitted"
// @Success 200 {object} dto.RatesResponse
// @Failure 400 {object} map[string]string "Invalid date or currency code"
// @Failure 500 {object} map[string]string "No rates available"
// @Router /rates [get]
func (h *ratesHandler) getRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.GetRatesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	base := strings.ToUpper(strings.TrimSpace(query.Base))
	if len(base) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Base currency code must be 3 letters"})
		return
	}

	symbols, err := parseSymbols(query.Symbols)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := h.resolveDate(c, query.Date)
	if err != nil {
		return // response already written
	}

	rates, err := h.resolver.ResolveRates(c.Request.Context(), base, symbols, date, query.RateType)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to resolve rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rates"})
		return
	}

	c.JSON(http.StatusOK, dto.RatesResponse{
		Base:  base,
		Date:  date.Format(time.DateOnly),
		Rates: rates,
	})
}

// getRate godoc
// @Summary Get a single exchange rate
// @Description Retrieves the rate for one currency pair on a date. Without a rate_type the default priority ordering picks among the stored types.
// @Tags rates
// @Produce json
// @Param from path string true "From currency code"
// @Param to path string true "To currency code"
// @Param date query string false "Date in YYYY-MM-DD format; defaults to the latest available"
// @Param rate_type query string false "Rate type; never falls back to a different type"
// @Success 200 {object} dto.RateResponse
// @Failure 400 {object} map[string]string "Invalid date or currency code"
// @Failure 404 {object} map[string]string "No rate for this pair"
// @Router /rates/{from}/{to} [get]
func (h *ratesHandler) getRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var query dto.GetRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	from := strings.ToUpper(c.Param("from"))
	to := strings.ToUpper(c.Param("to"))

	date, err := h.resolveDate(c, query.Date)
	if err != nil {
		return
	}

	rate, err := h.resolver.ResolveRate(c.Request.Context(), from, to, date, query.RateType)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate found for " + from + " to " + to})
		default:
			logger.Error("Failed to resolve rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rate"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.RateResponse{
		FromCurrency: from,
		ToCurrency:   to,
		Date:         date.Format(time.DateOnly),
		RateType:     query.RateType,
		Rate:         rate,
	})
}

// resolveDate parses the date parameter, falling back to the store's latest
// known date. On failure it writes the error response and returns a non-nil
// error to signal the caller to stop.
func (h *ratesHandler) resolveDate(c *gin.Context, raw string) (time.Time, error) {
	if raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
			return time.Time{}, err
		}
		return date, nil
	}

	date, err := h.resolver.ResolveLatestDate(c.Request.Context())
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("No rates available", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No rates available"})
		return time.Time{}, err
	}
	return date, nil
}

// parseSymbols splits a comma-separated currency list, returning nil for an
// empty parameter (meaning "all reachable currencies").
func parseSymbols(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		symbol := strings.ToUpper(strings.TrimSpace(part))
		if symbol == "" {
			continue
		}
		if len(symbol) != 3 {
			return nil, errors.New("currency codes must be 3 letters: " + symbol)
		}
		symbols = append(symbols, symbol)
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	return symbols, nil
}
