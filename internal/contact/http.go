package contact

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Sender interface {
	Send(ctx context.Context, sub Submission, remoteIP string) error
}

type Handler struct {
	svc Sender
}

func NewHandler(svc Sender) *Handler {
	return &Handler{svc: svc}
}

// Register mounts POST "" on rg, behind the given middleware.
func (h *Handler) Register(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("", append(mw, h.send)...)
}

func (h *Handler) send(c *gin.Context) {
	var sub Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	err := h.svc.Send(c.Request.Context(), sub, c.ClientIP())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Message sent successfully! I will get back to you soon."})
	case errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrCaptcha):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "reCAPTCHA verification failed. Please try again."})
	case errors.Is(err, ErrDelivery), errors.Is(err, ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "Failed to send message. Please try again later."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
