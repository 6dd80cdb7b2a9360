package handlers

import (
	"errors"
	"net/http"

	consultantRepo "consultly/database/repository/consultant"
	"consultly/services/directory"

	"github.com/gin-gonic/gin"
)

// DirectoryService is injected from main during startup.
var DirectoryService directory.Service

// ListConsultants returns the consultants open for bookings. This backs the
// consultant selection step and the public team page.
func ListConsultants(c *gin.Context) {
	consultants, err := DirectoryService.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load consultants"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultants": consultants})
}

// GetConsultant returns a single consultant profile.
func GetConsultant(c *gin.Context) {
	consultant, err := DirectoryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, consultantRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "consultant not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load consultant"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultant": consultant})
}
