package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go-sales-agent/internal/auth"
	"go-sales-agent/internal/gateway"
	"go-sales-agent/internal/middleware"
	"go-sales-agent/internal/models"
	"go-sales-agent/internal/reports"
	"go-sales-agent/internal/utils"

	"github.com/gin-gonic/gin"
)

// Assistant answers free-form questions. It is nil when no AI key is configured.
type Assistant interface {
	Ask(ctx context.Context, message string) (string, error)
}

// Handler serves every API route. It is built once in main and shares the gateway.
type Handler struct {
	gw        *gateway.Gateway
	tokens    *auth.TokenManager
	assistant Assistant
	now       func() time.Time
}

func New(gw *gateway.Gateway, tokens *auth.TokenManager, assistant Assistant) *Handler {
	return &Handler{gw: gw, tokens: tokens, assistant: assistant, now: time.Now}
}

// respondError maps gateway and lookup failures onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var re *gateway.RemoteError
	switch {
	case errors.Is(err, gateway.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, gateway.ErrValidationFailed):
		status := http.StatusBadRequest
		if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
			status = re.Status
		}
		c.JSON(status, gin.H{"error": gateway.Message(err)})
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, reports.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": gateway.Message(err)})
	case errors.Is(err, gateway.ErrRemoteUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The sales server is unreachable. Please try again later.", "offline": true})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

func sessionUser(c *gin.Context) models.User {
	u, _ := middleware.CurrentUser(c)
	return u
}

// selectedDay reads ?date= as a day or a month, defaulting to today.
func (h *Handler) selectedDay(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return h.now(), true
	}
	if t, err := utils.ParseDay(raw); err == nil {
		return t, true
	}
	if t, err := utils.ParseMonth(raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD or YYYY-MM"})
	return time.Time{}, false
}
