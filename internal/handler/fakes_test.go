package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/topup-desk/support-service/internal/model"
	"github.com/topup-desk/support-service/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeChatService реализует service.ChatServicer; nil-поля ведут себя как no-op.
type fakeChatService struct {
	listFn   func(ctx context.Context, sessionID string) ([]model.Message, error)
	sendFn   func(ctx context.Context, input service.SendMessageInput) (*model.Message, error)
	markFn   func(ctx context.Context, sessionID string, asStaff bool) error
	unreadFn func(ctx context.Context, sessionID string, asStaff bool) (int64, error)
	deleteFn func(ctx context.Context, sessionID string) error
}

func (f *fakeChatService) ListMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, sessionID)
}

func (f *fakeChatService) SendMessage(ctx context.Context, input service.SendMessageInput) (*model.Message, error) {
	if f.sendFn == nil {
		return &model.Message{}, nil
	}
	return f.sendFn(ctx, input)
}

func (f *fakeChatService) MarkRead(ctx context.Context, sessionID string, asStaff bool) error {
	if f.markFn == nil {
		return nil
	}
	return f.markFn(ctx, sessionID, asStaff)
}

func (f *fakeChatService) UnreadCount(ctx context.Context, sessionID string, asStaff bool) (int64, error) {
	if f.unreadFn == nil {
		return 0, nil
	}
	return f.unreadFn(ctx, sessionID, asStaff)
}

func (f *fakeChatService) DeleteConversation(ctx context.Context, sessionID string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, sessionID)
}

// fakeTicketService реализует service.TicketServicer.
type fakeTicketService struct {
	createFn     func(ctx context.Context, sessionID, amount, userName string) (*model.Ticket, error)
	listFn       func(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error)
	updStatusFn  func(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error)
	updManagerFn func(ctx context.Context, id uint64, manager string) (*model.Ticket, error)
	deleteFn     func(ctx context.Context, id uint64) error
	setBlockedFn func(ctx context.Context, sessionID string, blocked bool) error
	latestFn     func(ctx context.Context, sessionID string, window time.Duration) (*model.Ticket, error)
}

func (f *fakeTicketService) Create(ctx context.Context, sessionID, amount, userName string) (*model.Ticket, error) {
	if f.createFn == nil {
		return &model.Ticket{SessionID: sessionID, Amount: amount, UserName: userName, Status: model.TicketStatusNew}, nil
	}
	return f.createFn(ctx, sessionID, amount, userName)
}

func (f *fakeTicketService) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	return &model.Ticket{ID: id}, nil
}

func (f *fakeTicketService) List(ctx context.Context, status model.TicketStatus) ([]model.Ticket, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, status)
}

func (f *fakeTicketService) UpdateStatus(ctx context.Context, id uint64, status model.TicketStatus) (*model.Ticket, error) {
	if f.updStatusFn == nil {
		return &model.Ticket{ID: id, Status: status}, nil
	}
	return f.updStatusFn(ctx, id, status)
}

func (f *fakeTicketService) UpdateManager(ctx context.Context, id uint64, manager string) (*model.Ticket, error) {
	if f.updManagerFn == nil {
		return &model.Ticket{ID: id, AssignedManager: manager}, nil
	}
	return f.updManagerFn(ctx, id, manager)
}

func (f *fakeTicketService) Delete(ctx context.Context, id uint64) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeTicketService) SetBlocked(ctx context.Context, sessionID string, blocked bool) error {
	if f.setBlockedFn == nil {
		return nil
	}
	return f.setBlockedFn(ctx, sessionID, blocked)
}

func (f *fakeTicketService) IsBlocked(ctx context.Context, sessionID string) (bool, error) {
	return false, nil
}

func (f *fakeTicketService) LatestBySession(ctx context.Context, sessionID string, window time.Duration) (*model.Ticket, error) {
	if f.latestFn == nil {
		return nil, nil
	}
	return f.latestFn(ctx, sessionID, window)
}

// fakeVisitorService реализует service.VisitorServicer.
type fakeVisitorService struct {
	trackFn func(ctx context.Context, sessionID, page string) error
	listFn  func(ctx context.Context, window time.Duration) ([]model.Visitor, error)
}

func (f *fakeVisitorService) Track(ctx context.Context, sessionID, page string) error {
	if f.trackFn == nil {
		return nil
	}
	return f.trackFn(ctx, sessionID, page)
}

func (f *fakeVisitorService) ListOnline(ctx context.Context, window time.Duration) ([]model.Visitor, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, window)
}

// recordingProducer копит события вместо отправки в Kafka.
type recordingProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingProducer) ProduceEvent(_ context.Context, event string, _ map[string]interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingProducer) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
