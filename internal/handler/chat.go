package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topup-desk/support-service/internal/errs"
	"github.com/topup-desk/support-service/internal/kafka"
	"github.com/topup-desk/support-service/internal/service"
	"github.com/topup-desk/support-service/internal/telegram"
)

type ChatHandler struct {
	svc      service.ChatServicer
	tickets  service.TicketServicer
	notifier *telegram.Notifier
	producer kafka.EventProducer
}

func NewChatHandler(svc service.ChatServicer, tickets service.TicketServicer, notifier *telegram.Notifier, producer kafka.EventProducer) *ChatHandler {
	return &ChatHandler{svc: svc, tickets: tickets, notifier: notifier, producer: producer}
}

func sessionFromRequest(c *gin.Context) string {
	if v := c.Query("session"); v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader("X-Session-Id"))
}

func (h *ChatHandler) List(c *gin.Context) {
	session := sessionFromRequest(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	items, err := h.svc.ListMessages(c.Request.Context(), session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": items})
}

type sendMessageRequest struct {
	Session     string `json:"session"`
	Message     string `json:"message"`
	IsAdmin     bool   `json:"is_admin"`
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	ManagerName string `json:"manager_name"`
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	session := req.Session
	if session == "" {
		session = sessionFromRequest(c)
	}
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), service.SendMessageInput{
		SessionID:   session,
		Body:        req.Message,
		ImageURL:    req.ImageURL,
		IsAdmin:     req.IsAdmin,
		UserName:    req.Name,
		ManagerName: req.ManagerName,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrSessionBlocked):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Превышен лимит запросов. Попробуйте позже."})
		case errors.Is(err, errs.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message or image_url is required"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		}
		return
	}

	if !msg.IsAdmin && msg.Body != "" {
		ticketRef := "N/A"
		if t, err := h.tickets.LatestBySession(c.Request.Context(), session, 24*time.Hour); err == nil && t != nil {
			ticketRef = strconv.FormatUint(t.ID, 10)
		}
		h.notifier.NotifyMessageAsync(ticketRef, msg.UserName, msg.Body)
	}
	h.producer.ProduceEvent(c.Request.Context(), "message.created", map[string]interface{}{
		"message_id": msg.ID,
		"session_id": msg.SessionID,
		"is_admin":   msg.IsAdmin,
	})

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	session := sessionFromRequest(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	asStaff := c.Query("as_staff") == "true"
	if err := h.svc.MarkRead(c.Request.Context(), session, asStaff); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark read"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) UnreadCount(c *gin.Context) {
	session := sessionFromRequest(c)
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	asStaff := c.Query("as_staff") == "true"
	count, err := h.svc.UnreadCount(c.Request.Context(), session, asStaff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *ChatHandler) DeleteConversation(c *gin.Context) {
	session := c.Param("session")
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	if err := h.svc.DeleteConversation(c.Request.Context(), session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete conversation"})
		return
	}
	h.producer.ProduceEvent(c.Request.Context(), "conversation.deleted", map[string]interface{}{
		"session_id": session,
	})
	c.Status(http.StatusNoContent)
}
