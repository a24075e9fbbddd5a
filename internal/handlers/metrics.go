package handlers

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/services"
	"gorm.io/gorm"
)

var startTime = time.Now()

// MetricsHandler exposes Prometheus text-format gauges.
type MetricsHandler struct {
	db  *gorm.DB
	hub *services.EventHub
}

func NewMetricsHandler(db *gorm.DB, hub *services.EventHub) *MetricsHandler {
	return &MetricsHandler{db: db, hub: hub}
}

// Metrics returns runtime, database, stream and board gauges.
// GET /metrics
func (h *MetricsHandler) Metrics(c *gin.Context) {
	var b strings.Builder

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	writeGauge(&b, "taskboard_uptime_seconds", "Time since server start in seconds", time.Since(startTime).Seconds())
	writeGauge(&b, "taskboard_goroutines", "Number of active goroutines", float64(runtime.NumGoroutine()))
	writeGauge(&b, "taskboard_memory_alloc_bytes", "Current heap allocation in bytes", float64(m.Alloc))

	if sqlDB, err := h.db.DB(); err == nil {
		stats := sqlDB.Stats()
		writeGauge(&b, "taskboard_db_open_connections", "Number of open DB connections", float64(stats.OpenConnections))
		writeGauge(&b, "taskboard_db_in_use_connections", "Number of in-use DB connections", float64(stats.InUse))
	}

	hubStats := h.hub.Stats()
	writeGauge(&b, "taskboard_stream_subscribers", "Number of live event subscriptions", float64(hubStats.Subscribers))
	writeGauge(&b, "taskboard_stream_task_subscribers", "Subscriptions to taskUpdated", float64(hubStats.ByTopic[services.TopicTaskUpdated]))
	writeGauge(&b, "taskboard_stream_comment_subscribers", "Subscriptions to commentAdded", float64(hubStats.ByTopic[services.TopicCommentAdded]))
	writeGauge(&b, "taskboard_stream_max_backlog", "Deepest undelivered queue across subscribers", float64(hubStats.MaxBacklog))

	var users, projects, comments int64
	h.db.Model(&models.User{}).Count(&users)
	h.db.Model(&models.Project{}).Count(&projects)
	h.db.Model(&models.Comment{}).Count(&comments)
	writeGauge(&b, "taskboard_users_total", "Registered users", float64(users))
	writeGauge(&b, "taskboard_projects_total", "Projects", float64(projects))
	writeGauge(&b, "taskboard_comments_total", "Comments", float64(comments))

	for _, status := range []string{models.StatusTodo, models.StatusInProgress, models.StatusDone} {
		var n int64
		h.db.Model(&models.Task{}).Where("status = ?", status).Count(&n)
		writeGauge(&b, "taskboard_tasks_"+strings.ToLower(status), "Tasks in the "+status+" column", float64(n))
	}

	c.Data(200, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
}

func writeGauge(b *strings.Builder, name, help string, value float64) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s gauge\n", name)
	fmt.Fprintf(b, "%s %g\n\n", name, value)
}
