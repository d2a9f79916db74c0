package handlers

import (
	"net/http"

	"github.com/cambiar/rates-api/internal/dto"
	"github.com/gin-gonic/gin"
)

// getHome godoc
// @Summary Show the status of server.
// @Description get the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router / [get]
func getHome(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Message: "Exchange Rate API",
	})
}
