package handlers

import (
	"net/http"

	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
)

// GetSystemStatus tells the frontend whether the server is reachable and how
// many local writes are still waiting for it.
func (h *Handler) GetSystemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device_id":      utils.GetDeviceID(),
		"online":         h.gw.Online(),
		"pending_writes": h.gw.PendingCount(c.Request.Context()),
		"api_url":        h.gw.BaseURL(),
	})
}

// --- POST: /api/sync ---
// Pushes sales and leaves recorded while offline.
func (h *Handler) SyncNow(c *gin.Context) {
	report, err := h.gw.SyncPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The sales server is unreachable. Please try again later.", "offline": true, "sync": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sync": report})
}
