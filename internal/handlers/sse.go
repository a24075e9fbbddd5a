package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/pkg/logger"
	"github.com/taskboard/backend/pkg/response"
)

// SSEHandler streams hub events as Server-Sent Events.
type SSEHandler struct {
	hub       *services.EventHub
	keepalive time.Duration
}

func NewSSEHandler(hub *services.EventHub, keepalive time.Duration) *SSEHandler {
	if keepalive <= 0 {
		keepalive = 30 * time.Second
	}
	return &SSEHandler{hub: hub, keepalive: keepalive}
}

// StreamTaskUpdates streams taskUpdated events for a project
// GET /api/events/projects/:id/tasks
func (h *SSEHandler) StreamTaskUpdates(c *gin.Context) {
	h.stream(c, services.TopicTaskUpdated, c.Param("id"))
}

// StreamCommentAdded streams commentAdded events for a task
// GET /api/events/tasks/:id/comments
func (h *SSEHandler) StreamCommentAdded(c *gin.Context) {
	h.stream(c, services.TopicCommentAdded, c.Param("id"))
}

func (h *SSEHandler) stream(c *gin.Context, topic services.Topic, key string) {
	sub, err := h.hub.Subscribe(topic, key)
	if err != nil {
		response.Error(c, response.NewServerError("event stream unavailable"))
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	logger.Info().Str("subscription", sub.ID).Str("topic", string(topic)).Str("key", key).Msg("SSE client connected")

	reqCtx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		ctx, cancel := context.WithTimeout(reqCtx, h.keepalive)
		payload, ok := sub.Next(ctx)
		cancel()

		if !ok {
			select {
			case <-sub.Done():
				return false
			case <-reqCtx.Done():
				logger.Info().Str("subscription", sub.ID).Msg("SSE client disconnected")
				return false
			default:
			}
			fmt.Fprint(w, ": ping\n\n")
			c.Writer.Flush()
			return true
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error().Err(err).Msg("SSE marshal error")
			return true
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		c.Writer.Flush()
		return true
	})
}
