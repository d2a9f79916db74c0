package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/cambiar/rates-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currenciesHandler proxies the provider's currency catalog.
type currenciesHandler struct {
	currencies portssvc.CurrencyCatalogSvc
}

// registerCurrencyRoutes registers routes related to the currency catalog.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencies portssvc.CurrencyCatalogSvc) {
	h := &currenciesHandler{currencies: currencies}
	rg.GET("/currencies", h.listCurrencies)
}

// listCurrencies godoc
// @Summary List supported currencies
// @Description Returns the currency code to name mapping from the primary provider.
// @Tags currencies
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Failed to fetch currencies"
// @Router /currencies [get]
func (h *currenciesHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.currencies.ListCurrencies(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to fetch currencies", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch currencies"})
		return
	}
	c.JSON(http.StatusOK, currencies)
}
