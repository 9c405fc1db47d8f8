package poll

import (
	"context"
	"sync"

	"github.com/topup-desk/support-service/pkg/store"
)

// UnreadTracker считает непрочитанные сообщения одной стороны диалога.
// Пока диалог не активен, Count растёт с каждым входящим; активация
// помечает всё прочитанным и обнуляет счётчик.
type UnreadTracker struct {
	mu        sync.Mutex
	store     store.RemoteStore
	sessionID string
	asStaff   bool
	active    bool
}

func NewUnreadTracker(st store.RemoteStore, sessionID string, asStaff bool) *UnreadTracker {
	return &UnreadTracker{store: st, sessionID: sessionID, asStaff: asStaff}
}

// Activate помечает диалог открытым: всё непрочитанное гасится сразу,
// и дальше гасится на каждом Count, пока не вызван Deactivate.
func (t *UnreadTracker) Activate(ctx context.Context) error {
	t.mu.Lock()
	t.active = true
	t.mu.Unlock()
	return t.store.MarkRead(ctx, t.sessionID, t.asStaff)
}

// Deactivate закрывает диалог; входящие снова копятся.
func (t *UnreadTracker) Deactivate() {
	t.mu.Lock()
	t.active = false
	t.mu.Unlock()
}

// Count возвращает число непрочитанных. Для активного диалога сначала
// помечает входящие прочитанными, поэтому возвращает ноль.
func (t *UnreadTracker) Count(ctx context.Context) (int, error) {
	t.mu.Lock()
	active := t.active
	t.mu.Unlock()
	if active {
		if err := t.store.MarkRead(ctx, t.sessionID, t.asStaff); err != nil {
			return 0, err
		}
		return 0, nil
	}
	return t.store.UnreadCount(ctx, t.sessionID, t.asStaff)
}
