package handlers

import (
	"errors"
	"net/http"

	"consultly/models"
	"consultly/services/lead"

	"github.com/gin-gonic/gin"
)

// LeadService is injected from main during startup.
var LeadService lead.Service

// CaptureLead stores a marketing lead from a webinar, whitepaper, newsletter,
// or contact form.
func CaptureLead(c *gin.Context) {
	var input models.Lead
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := LeadService.Capture(&input); err != nil {
		var ferrs lead.FieldErrors
		if errors.As(err, &ferrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":  "validation_failed",
				"fields": ferrs,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to capture lead"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "captured"})
}
