package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vibely/vibely-backend/internal/middleware"
	"github.com/vibely/vibely-backend/internal/stream"
	pkglogger "github.com/vibely/vibely-backend/pkg/logger"
)

// StreamHandler serves the per-user live event stream over SSE. The channel
// is unidirectional: the server writes envelopes, the client never writes.
type StreamHandler struct {
	registry  *stream.Registry
	heartbeat time.Duration
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(registry *stream.Registry, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &StreamHandler{registry: registry, heartbeat: heartbeat}
}

// Connect handles GET /stream — long-lived text/event-stream
// @Summary Open the live message event stream
// @Tags stream
// @Produce text/event-stream
// @Security BearerAuth
// @Router /stream [get]
func (h *StreamHandler) Connect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	// Registering replaces any prior stream for this user.
	conn := h.registry.Register(userID)
	defer h.registry.Unregister(conn)

	log := pkglogger.WithUserID(userID)
	log.Info().Msg("stream connected")
	defer log.Info().Msg("stream disconnected")

	if _, err := io.WriteString(c.Writer, ": connected\n\n"); err != nil {
		return
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case env, ok := <-conn.Events():
			if !ok {
				// Replaced by a fresh connection or registry shutdown.
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				log.Error().Err(err).Msg("marshal envelope")
				continue
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
				return
			}
			c.Writer.Flush()

		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
