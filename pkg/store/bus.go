package store

import "sync"

// Типы событий шины.
const (
	EventMessageCreated      = "message.created"
	EventMessagesRead        = "messages.read"
	EventTicketCreated       = "ticket.created"
	EventTicketUpdated       = "ticket.updated"
	EventTicketDeleted       = "ticket.deleted"
	EventConversationDeleted = "conversation.deleted"
)

type Event struct {
	Type      string
	SessionID string
}

// Bus разносит мутации локального хранилища по подписчикам в процессе.
// Снимок на диске остаётся источником истины: другие процессы увидят
// изменение на своём ближайшем тике поллинга.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]func(Event))}
}

// Subscribe регистрирует слушателя и возвращает функцию отписки.
// Отписка обязана вызываться на всех путях выхода владельца.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish синхронно вызывает всех подписчиков.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}
