package handlers

import (
	"net/http"

	"consultly/utils"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns the latest dependency health snapshot.
func HealthCheck(c *gin.Context) {
	status := utils.GetHealthStatus()

	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	for _, ok := range status.Redis {
		if !ok {
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}
