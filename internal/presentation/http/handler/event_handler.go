package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/hisab-api/internal/application/service"
	"github.com/sangkips/hisab-api/internal/presentation/http/dto/response"
)

// keepAliveInterval keeps idle proxies from closing the stream
const keepAliveInterval = 25 * time.Second

// EventHandler streams change events over Server-Sent Events
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Stream sends one "change" event per committed mutation of the account
func (h *EventHandler) Stream(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	events, cancel, err := h.eventService.Subscribe(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.SSEvent("ready", gin.H{"account_id": sess.AccountID})
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
