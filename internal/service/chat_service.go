package service

import (
	"context"
	"strings"

	"github.com/topup-desk/support-service/internal/errs"
	"github.com/topup-desk/support-service/internal/model"
	"gorm.io/gorm"
)

// ChatServicer — интерфейс для хендлеров.
type ChatServicer interface {
	ListMessages(ctx context.Context, sessionID string) ([]model.Message, error)
	SendMessage(ctx context.Context, input SendMessageInput) (*model.Message, error)
	MarkRead(ctx context.Context, sessionID string, asStaff bool) error
	UnreadCount(ctx context.Context, sessionID string, asStaff bool) (int64, error)
	DeleteConversation(ctx context.Context, sessionID string) error
}

type SendMessageInput struct {
	SessionID   string
	Body        string
	ImageURL    string
	IsAdmin     bool
	UserName    string
	ManagerName string
}

type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	var items []model.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SendMessage сохраняет сообщение. Флаг прочтения стороны автора ставится
// сразу, противоположной — сбрасывается. Заблокированная сессия не может
// отправлять клиентские сообщения (errs.ErrSessionBlocked).
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*model.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" && input.ImageURL == "" {
		return nil, errs.ErrEmptyMessage
	}
	if !input.IsAdmin {
		var blocked int64
		err := s.db.WithContext(ctx).Model(&model.Ticket{}).
			Where("session_id = ? AND is_blocked = ?", input.SessionID, true).
			Count(&blocked).Error
		if err != nil {
			return nil, err
		}
		if blocked > 0 {
			return nil, errs.ErrSessionBlocked
		}
	}

	msg := &model.Message{
		SessionID:   input.SessionID,
		Body:        body,
		ImageURL:    input.ImageURL,
		IsAdmin:     input.IsAdmin,
		UserName:    input.UserName,
		ManagerName: input.ManagerName,
		ReadByUser:  !input.IsAdmin,
		ReadByAdmin: input.IsAdmin,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		// Новое сообщение поднимает заявки сессии в админском списке.
		return tx.Model(&model.Ticket{}).
			Where("session_id = ?", input.SessionID).
			Update("updated_at", gorm.Expr("NOW()")).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkRead идемпотентно помечает сообщения сессии прочитанными читающей стороной.
func (s *ChatService) MarkRead(ctx context.Context, sessionID string, asStaff bool) error {
	field := "read_by_user"
	if asStaff {
		field = "read_by_admin"
	}
	return s.db.WithContext(ctx).Model(&model.Message{}).
		Where("session_id = ? AND "+field+" = ?", sessionID, false).
		Update(field, true).Error
}

func (s *ChatService) UnreadCount(ctx context.Context, sessionID string, asStaff bool) (int64, error) {
	field := "read_by_user"
	if asStaff {
		field = "read_by_admin"
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Message{}).
		Where("session_id = ? AND "+field+" = ?", sessionID, false).
		Count(&count).Error
	return count, err
}

// DeleteConversation удаляет все сообщения и заявки сессии.
func (s *ChatService) DeleteConversation(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("session_id = ?", sessionID).Delete(&model.Ticket{}).Error
	})
}
