package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/topup-desk/support-service/internal/errs"
	"github.com/topup-desk/support-service/internal/kafka"
	"github.com/topup-desk/support-service/internal/model"
	"github.com/topup-desk/support-service/internal/service"
	"github.com/topup-desk/support-service/internal/telegram"
)

type TicketHandler struct {
	svc      service.TicketServicer
	notifier *telegram.Notifier
	producer kafka.EventProducer
}

func NewTicketHandler(svc service.TicketServicer, notifier *telegram.Notifier, producer kafka.EventProducer) *TicketHandler {
	return &TicketHandler{svc: svc, notifier: notifier, producer: producer}
}

type createTicketRequest struct {
	Session string `json:"session" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
	Name    string `json:"name"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ticket, err := h.svc.Create(c.Request.Context(), req.Session, req.Amount, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Превышен лимит: максимум 5 заявок за 24 часа"})
		case errors.Is(err, errs.ErrSessionBlocked):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Превышен лимит запросов. Попробуйте позже."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		}
		return
	}

	h.notifier.NotifyTicketAsync(ticket.ID, ticket.UserName, ticket.Amount)
	h.producer.ProduceEvent(c.Request.Context(), "ticket.created", map[string]interface{}{
		"ticket_id":  ticket.ID,
		"session_id": ticket.SessionID,
		"amount":     ticket.Amount,
		"status":     string(ticket.Status),
	})

	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) List(c *gin.Context) {
	status := model.TicketStatus(c.Query("status"))
	if status != "" && !model.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}
	items, err := h.svc.List(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": items})
}

type updateTicketRequest struct {
	Status  *string `json:"status,omitempty"`
	Manager *string `json:"manager,omitempty"`
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if req.Status == nil && req.Manager == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}

	var ticket *model.Ticket
	if req.Status != nil {
		ticket, err = h.svc.UpdateStatus(c.Request.Context(), id, model.TicketStatus(*req.Status))
		if err != nil {
			h.writeUpdateError(c, err)
			return
		}
	}
	if req.Manager != nil {
		ticket, err = h.svc.UpdateManager(c.Request.Context(), id, *req.Manager)
		if err != nil {
			h.writeUpdateError(c, err)
			return
		}
	}

	h.producer.ProduceEvent(c.Request.Context(), "ticket.updated", map[string]interface{}{
		"ticket_id":  ticket.ID,
		"session_id": ticket.SessionID,
		"status":     string(ticket.Status),
	})
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) writeUpdateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
	case errors.Is(err, errs.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update ticket"})
	}
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete ticket"})
		return
	}
	h.producer.ProduceEvent(c.Request.Context(), "ticket.deleted", map[string]interface{}{
		"ticket_id": id,
	})
	c.Status(http.StatusNoContent)
}

func (h *TicketHandler) Block(c *gin.Context) {
	h.setBlocked(c, true)
}

func (h *TicketHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, false)
}

func (h *TicketHandler) setBlocked(c *gin.Context, blocked bool) {
	session := c.Param("session")
	if session == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session is required"})
		return
	}
	if err := h.svc.SetBlocked(c.Request.Context(), session, blocked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update block flag"})
		return
	}
	c.Status(http.StatusNoContent)
}
