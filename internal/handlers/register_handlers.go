package handlers

import (
	portssvc "github.com/cambiar/rates-api/internal/core/ports/services"
	"github.com/cambiar/rates-api/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check and root status
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := r.Group("/")
	root.GET("", getHome)
	registerRateRoutes(root, services.Resolver)
	registerCurrencyRoutes(root, services.Currencies)
}
