package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anteeq/moderator/internal/storage"
)

// Handler serves the monitoring endpoints of the bot process.
type Handler struct {
	Storage *storage.Service
	started time.Time
}

func NewHandler(s *storage.Service) *Handler {
	return &Handler{Storage: s, started: time.Now()}
}

// Root answers uptime monitors that only probe "/".
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health reports service liveness together with the state of both
// backing stores.
func (h *Handler) Health(c *gin.Context) {
	db, err := h.Storage.DB.DB()
	if err == nil {
		err = db.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "moderation_bot",
			"error":   err.Error(),
		})
		return
	}
	if err := h.Storage.Redis.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"service": "moderation_bot",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "moderation_bot",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
