package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/services"
	"gorm.io/gorm"
)

// HealthHandler provides liveness and detailed health endpoints.
type HealthHandler struct {
	db      *gorm.DB
	hub     *services.EventHub
	monitor *services.HubMonitor
}

func NewHealthHandler(db *gorm.DB, hub *services.EventHub, monitor *services.HubMonitor) *HealthHandler {
	return &HealthHandler{db: db, hub: hub, monitor: monitor}
}

// Health is the liveness probe.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CheckHealth returns the health status of all subsystems.
// GET /health/detail
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"
	status := http.StatusOK

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}
	if dbStatus != "ok" {
		overall = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	stats := h.hub.Stats()
	components := gin.H{
		"database":      dbStatus,
		"subscribers":   stats.Subscribers,
		"subscriptions": stats.ByTopic,
		"max_backlog":   stats.MaxBacklog,
	}
	if next := h.monitor.NextRun(); !next.IsZero() {
		components["monitor_next_run"] = next
	}

	c.JSON(status, gin.H{
		"status":     overall,
		"service":    "taskboard",
		"components": components,
	})
}
