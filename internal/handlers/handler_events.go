package handlers

import (
	"io"
	"log/slog"
	"time"

	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/middleware"
	"github.com/gin-gonic/gin"
)

const heartbeatInterval = 25 * time.Second

// RegisterEventRoutes exposes the live ledger event stream.
func RegisterEventRoutes(rg *gin.RouterGroup, subscriber portssvc.EventSubscriber) {
	rg.GET("/events", streamEvents(subscriber))
}

// streamEvents godoc
// @Summary Live ledger events
// @Description Server-sent events for session, movement, sale, purchase and credit activity. Slow clients may miss events.
// @Tags events
// @Produce text/event-stream
// @Success 200 {object} domain.Event
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /events [get]
func streamEvents(subscriber portssvc.EventSubscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		events, cancel := subscriber.Subscribe()
		defer cancel()

		logger.Info("Event stream opened")
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")
		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case event, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(string(event.Type), event)
				return true
			case <-heartbeat.C:
				c.SSEvent("heartbeat", gin.H{"at": time.Now().UTC()})
				return true
			}
		})
		logger.Info("Event stream closed", slog.Bool("client_gone", c.Request.Context().Err() != nil))
	}
}
