package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topup-desk/support-service/internal/service"
)

const defaultOnlineWindow = 5 * time.Minute

type VisitorHandler struct {
	svc service.VisitorServicer
}

func NewVisitorHandler(svc service.VisitorServicer) *VisitorHandler {
	return &VisitorHandler{svc: svc}
}

type trackVisitorRequest struct {
	Session string `json:"session" binding:"required"`
	Page    string `json:"page"`
}

func (h *VisitorHandler) Track(c *gin.Context) {
	var req trackVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := h.svc.Track(c.Request.Context(), req.Session, req.Page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to track visitor"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VisitorHandler) ListOnline(c *gin.Context) {
	window := defaultOnlineWindow
	if v := c.Query("minutes"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			window = time.Duration(parsed) * time.Minute
		}
	}
	items, err := h.svc.ListOnline(c.Request.Context(), window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list visitors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": items, "online": len(items)})
}
