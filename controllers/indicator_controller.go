package controllers

import (
	"net/http"

	"crypto_tracker_backend/models"
	"crypto_tracker_backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// IndicatorController serves the read contracts the dashboard consumes:
// latest record, history range, and refresh status per indicator
type IndicatorController struct {
	store *services.DataStore
}

// NewIndicatorController creates a new indicator controller
func NewIndicatorController(store *services.DataStore) *IndicatorController {
	return &IndicatorController{store: store}
}

// GetIndicators returns all tracked indicators with their refresh status
// GET /api/v1/indicators
func (ic *IndicatorController) GetIndicators(c *gin.Context) {
	statuses, err := ic.store.ListStatuses()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
		return
	}

	byName := make(map[string]models.IndicatorUpdate, len(statuses))
	for _, s := range statuses {
		byName[s.IndicatorName] = s
	}

	indicators := make([]gin.H, 0, len(models.IndicatorNames()))
	for _, name := range models.IndicatorNames() {
		entry := gin.H{"name": name}
		if status, ok := byName[name]; ok {
			entry["status"] = status
		}
		indicators = append(indicators, entry)
	}

	c.JSON(http.StatusOK, gin.H{"data": indicators})
}

// GetLatest returns the most recent record for an indicator
// GET /api/v1/indicators/:name/latest
func (ic *IndicatorController) GetLatest(c *gin.Context) {
	name := c.Param("name")
	if !models.IsIndicator(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown indicator"})
		return
	}

	record, err := ic.store.GetLatest(name)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data recorded yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch latest record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

// GetHistory returns an indicator's records within an optional date range
// GET /api/v1/indicators/:name/history?start=2024-01-01&end=2024-12-31
func (ic *IndicatorController) GetHistory(c *gin.Context) {
	name := c.Param("name")
	if !models.IsIndicator(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown indicator"})
		return
	}

	history, err := ic.store.GetHistory(name, c.Query("start"), c.Query("end"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}

// GetStatus returns the refresh health for an indicator
// GET /api/v1/indicators/:name/status
func (ic *IndicatorController) GetStatus(c *gin.Context) {
	name := c.Param("name")
	if !models.IsIndicator(name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown indicator"})
		return
	}

	status, err := ic.store.GetStatus(name)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "No refresh attempted yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}
