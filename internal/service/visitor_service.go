package service

import (
	"context"
	"time"

	"github.com/topup-desk/support-service/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitorServicer — интерфейс для хендлеров.
type VisitorServicer interface {
	Track(ctx context.Context, sessionID, page string) error
	ListOnline(ctx context.Context, window time.Duration) ([]model.Visitor, error)
}

type VisitorService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewVisitorService(db *gorm.DB) *VisitorService {
	return &VisitorService{db: db, now: time.Now}
}

// Track фиксирует присутствие посетителя (upsert по session_id).
func (s *VisitorService) Track(ctx context.Context, sessionID, page string) error {
	now := s.now()
	v := &model.Visitor{
		SessionID: sessionID,
		Page:      page,
		FirstSeen: now,
		LastSeen:  now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": now, "page": page}),
	}).Create(v).Error
}

// ListOnline возвращает посетителей, замеченных в пределах window.
func (s *VisitorService) ListOnline(ctx context.Context, window time.Duration) ([]model.Visitor, error) {
	var items []model.Visitor
	err := s.db.WithContext(ctx).
		Where("last_seen > ?", s.now().Add(-window)).
		Order("last_seen DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
