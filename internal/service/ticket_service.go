package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/topup-desk/support-service/internal/errs"
	"github.com/topup-desk/support-service/internal/model"
	"gorm.io/gorm"
)

// Лимит заявок с одной сессии за скользящие 24 часа.
const (
	ticketRateLimit  = 5
	ticketRateWindow = 24 * time.Hour
)

// TicketServicer — интерфейс для хендлеров (Dependency Inversion).
type TicketServicer interface {
	Create(ctx context.Context, sessionID, amount, userName string) (*model.Ticket, error)
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	List(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error)
	UpdateStatus(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error)
	UpdateManager(ctx context.Context, id uint64, manager string) (*model.Ticket, error)
	Delete(ctx context.Context, id uint64) error
	SetBlocked(ctx context.Context, sessionID string, blocked bool) error
	IsBlocked(ctx context.Context, sessionID string) (bool, error)
	LatestBySession(ctx context.Context, sessionID string, window time.Duration) (*model.Ticket, error)
}

type TicketService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db, now: time.Now}
}

// Create заводит заявку и первое сообщение клиента в одной транзакции.
// Возвращает errs.ErrRateLimited при превышении лимита 5/24ч
// и errs.ErrSessionBlocked для заблокированной сессии.
func (s *TicketService) Create(ctx context.Context, sessionID, amount, userName string) (*model.Ticket, error) {
	blocked, err := s.IsBlocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errs.ErrSessionBlocked
	}

	var count int64
	threshold := s.now().Add(-ticketRateWindow)
	if err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("session_id = ? AND created_at > ?", sessionID, threshold).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= ticketRateLimit {
		return nil, errs.ErrRateLimited
	}

	ticket := &model.Ticket{
		SessionID: sessionID,
		Amount:    amount,
		UserName:  userName,
		Status:    model.TicketStatusNew,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ticket).Error; err != nil {
			return err
		}
		first := &model.Message{
			SessionID:  sessionID,
			Body:       fmt.Sprintf("Здравствуйте! Хочу пополнить счёт на %s ₽", amount),
			IsAdmin:    false,
			UserName:   userName,
			ReadByUser: true,
		}
		return tx.Create(first).Error
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// List возвращает заявки от недавно обновлённых к старым и заполняет
// UnreadMessages — число непрочитанных администратором сообщений сессии.
func (s *TicketService) List(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error) {
	var items []model.Ticket
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Order("updated_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	type unreadRow struct {
		SessionID string
		Count     int64
	}
	var rows []unreadRow
	if err := s.db.WithContext(ctx).Model(&model.Message{}).
		Select("session_id, COUNT(*) AS count").
		Where("read_by_admin = ?", false).
		Group("session_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	unread := make(map[string]int64, len(rows))
	for _, r := range rows {
		unread[r.SessionID] = r.Count
	}
	for i := range items {
		items[i].UnreadMessages = unread[items[i].SessionID]
	}
	return items, nil
}

func (s *TicketService) UpdateStatus(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error) {
	if !model.ValidStatus(status) {
		return nil, errs.ErrInvalidStatus
	}
	return s.update(ctx, id, map[string]interface{}{"status": status})
}

// UpdateManager назначает менеджера; пустая строка снимает назначение.
func (s *TicketService) UpdateManager(ctx context.Context, id uint64, manager string) (*model.Ticket, error) {
	return s.update(ctx, id, map[string]interface{}{"assigned_manager": manager})
}

func (s *TicketService) update(ctx context.Context, id uint64, changes map[string]interface{}) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) Delete(ctx context.Context, id uint64) error {
	res := s.db.WithContext(ctx).Delete(&model.Ticket{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

// SetBlocked помечает все заявки сессии; блокировка действует на отправку
// сообщений и создание новых заявок.
func (s *TicketService) SetBlocked(ctx context.Context, sessionID string, blocked bool) error {
	return s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("session_id = ?", sessionID).
		Update("is_blocked", blocked).Error
}

func (s *TicketService) IsBlocked(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("session_id = ? AND is_blocked = ?", sessionID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestBySession возвращает свежайшую заявку сессии в пределах window
// (для привязки уведомления о сообщении к номеру заявки) либо nil.
func (s *TicketService) LatestBySession(ctx context.Context, sessionID string, window time.Duration) (*model.Ticket, error) {
	var t model.Ticket
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND created_at > ?", sessionID, s.now().Add(-window)).
		Order("created_at DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
