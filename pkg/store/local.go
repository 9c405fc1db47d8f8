package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	ticketLimitPerWindow = 5
	ticketLimitWindow    = 24 * time.Hour
)

// LocalOptions настраивает локальное хранилище.
type LocalOptions struct {
	// SnapshotPath — файл JSON-снимка. Пустая строка отключает персистентность.
	SnapshotPath string
	// Bus получает события мутаций. Может быть nil.
	Bus *Bus
	// Now подменяет часы в тестах. nil — time.Now.
	Now func() time.Time
	// Notify вызывается после создания заявки или сообщения. Может быть nil.
	Notify func(event string, sessionID string)
}

type localSnapshot struct {
	NextTicketID  uint64             `json:"next_ticket_id"`
	NextMessageID uint64             `json:"next_message_id"`
	Tickets       []Ticket           `json:"tickets"`
	Messages      []Message          `json:"messages"`
	Blocked       map[string]bool    `json:"blocked"`
	Ticketed      map[string][]int64 `json:"ticketed"`
}

// LocalStore — реализация RemoteStore без бэкенда: состояние живёт в памяти
// и в JSON-снимке на диске. Поведение зеркалит серверное, включая лимит
// пяти заявок за 24 часа и блокировку сессий.
type LocalStore struct {
	mu   sync.Mutex
	opts LocalOptions
	snap localSnapshot
}

// NewLocalStore открывает хранилище, подхватывая снимок, если он есть.
func NewLocalStore(opts LocalOptions) (*LocalStore, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &LocalStore{
		opts: opts,
		snap: localSnapshot{
			NextTicketID:  1,
			NextMessageID: 1,
			Blocked:       make(map[string]bool),
			Ticketed:      make(map[string][]int64),
		},
	}
	if opts.SnapshotPath != "" {
		data, err := os.ReadFile(opts.SnapshotPath)
		if err == nil {
			if err := json.Unmarshal(data, &s.snap); err != nil {
				return nil, errors.Wrap(err, "store.NewLocalStore: parse snapshot")
			}
			if s.snap.Blocked == nil {
				s.snap.Blocked = make(map[string]bool)
			}
			if s.snap.Ticketed == nil {
				s.snap.Ticketed = make(map[string][]int64)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "store.NewLocalStore: read snapshot")
		}
	}
	return s, nil
}

// persist пишет снимок на диск. Вызывается под мьютексом.
func (s *LocalStore) persist() error {
	if s.opts.SnapshotPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(&s.snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "store.LocalStore: marshal snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(s.opts.SnapshotPath), 0o755); err != nil {
		return errors.Wrap(err, "store.LocalStore: mkdir")
	}
	if err := os.WriteFile(s.opts.SnapshotPath, data, 0o600); err != nil {
		return errors.Wrap(err, "store.LocalStore: write snapshot")
	}
	return nil
}

func (s *LocalStore) publish(eventType, sessionID string) {
	if s.opts.Bus != nil {
		s.opts.Bus.Publish(Event{Type: eventType, SessionID: sessionID})
	}
}

func (s *LocalStore) notify(event, sessionID string) {
	if s.opts.Notify != nil {
		s.opts.Notify(event, sessionID)
	}
}

func (s *LocalStore) ListMessages(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0)
	for _, m := range s.snap.Messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *LocalStore) SendMessage(_ context.Context, input SendMessageInput) (*Message, error) {
	body := input.Body
	if body == "" && input.ImageURL == "" {
		return nil, ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !input.IsStaff && s.snap.Blocked[input.SessionID] {
		return nil, ErrRateLimited
	}
	m := s.appendMessage(input)
	if err := s.persist(); err != nil {
		return nil, err
	}
	s.publish(EventMessageCreated, input.SessionID)
	s.notify(EventMessageCreated, input.SessionID)
	return m, nil
}

// appendMessage добавляет сообщение и обновляет updated_at заявок сессии.
// Вызывается под мьютексом.
func (s *LocalStore) appendMessage(input SendMessageInput) *Message {
	now := s.opts.Now()
	m := Message{
		ID:          s.snap.NextMessageID,
		SessionID:   input.SessionID,
		Body:        input.Body,
		ImageURL:    input.ImageURL,
		IsAdmin:     input.IsStaff,
		UserName:    input.UserName,
		ManagerName: input.ManagerName,
		ReadByUser:  !input.IsStaff,
		ReadByAdmin: input.IsStaff,
		CreatedAt:   now,
	}
	s.snap.NextMessageID++
	s.snap.Messages = append(s.snap.Messages, m)
	for i := range s.snap.Tickets {
		if s.snap.Tickets[i].SessionID == input.SessionID {
			s.snap.Tickets[i].UpdatedAt = now
		}
	}
	return &m
}

func (s *LocalStore) ListTickets(_ context.Context, status string) ([]Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unread := make(map[string]int)
	for _, m := range s.snap.Messages {
		if !m.ReadByAdmin {
			unread[m.SessionID]++
		}
	}
	out := make([]Ticket, 0)
	for _, t := range s.snap.Tickets {
		if status != "" && t.Status != status {
			continue
		}
		t.UnreadMessages = unread[t.SessionID]
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *LocalStore) CreateTicket(_ context.Context, sessionID, amount, userName string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Blocked[sessionID] {
		return nil, ErrRateLimited
	}

	now := s.opts.Now()
	cutoff := now.Add(-ticketLimitWindow).UnixMilli()
	recent := make([]int64, 0, ticketLimitPerWindow)
	for _, ts := range s.snap.Ticketed[sessionID] {
		if ts > cutoff {
			recent = append(recent, ts)
		}
	}
	if len(recent) >= ticketLimitPerWindow {
		s.snap.Ticketed[sessionID] = recent
		return nil, ErrRateLimited
	}
	s.snap.Ticketed[sessionID] = append(recent, now.UnixMilli())

	t := Ticket{
		ID:        s.snap.NextTicketID,
		SessionID: sessionID,
		Amount:    amount,
		UserName:  userName,
		Status:    StatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.snap.NextTicketID++
	s.snap.Tickets = append(s.snap.Tickets, t)

	s.appendMessage(SendMessageInput{
		SessionID: sessionID,
		Body:      fmt.Sprintf("Здравствуйте! Хочу пополнить счёт на %s ₽", amount),
		UserName:  userName,
	})

	if err := s.persist(); err != nil {
		return nil, err
	}
	s.publish(EventTicketCreated, sessionID)
	s.notify(EventTicketCreated, sessionID)
	return &t, nil
}

func (s *LocalStore) UpdateTicketStatus(ctx context.Context, id uint64, status string) (*Ticket, error) {
	return s.updateTicket(id, func(t *Ticket) { t.Status = status })
}

func (s *LocalStore) UpdateTicketManager(ctx context.Context, id uint64, manager string) (*Ticket, error) {
	return s.updateTicket(id, func(t *Ticket) { t.AssignedManager = manager })
}

func (s *LocalStore) updateTicket(id uint64, apply func(*Ticket)) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Tickets {
		if s.snap.Tickets[i].ID != id {
			continue
		}
		apply(&s.snap.Tickets[i])
		s.snap.Tickets[i].UpdatedAt = s.opts.Now()
		if err := s.persist(); err != nil {
			return nil, err
		}
		t := s.snap.Tickets[i]
		s.publish(EventTicketUpdated, t.SessionID)
		return &t, nil
	}
	return nil, ErrNotFound
}

func (s *LocalStore) DeleteTicket(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Tickets {
		if s.snap.Tickets[i].ID != id {
			continue
		}
		sessionID := s.snap.Tickets[i].SessionID
		s.snap.Tickets = append(s.snap.Tickets[:i], s.snap.Tickets[i+1:]...)
		if err := s.persist(); err != nil {
			return err
		}
		s.publish(EventTicketDeleted, sessionID)
		return nil
	}
	return ErrNotFound
}

func (s *LocalStore) DeleteConversation(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tickets := s.snap.Tickets[:0]
	for _, t := range s.snap.Tickets {
		if t.SessionID != sessionID {
			tickets = append(tickets, t)
		}
	}
	s.snap.Tickets = tickets
	messages := s.snap.Messages[:0]
	for _, m := range s.snap.Messages {
		if m.SessionID != sessionID {
			messages = append(messages, m)
		}
	}
	s.snap.Messages = messages
	if err := s.persist(); err != nil {
		return err
	}
	s.publish(EventConversationDeleted, sessionID)
	return nil
}

func (s *LocalStore) MarkRead(_ context.Context, sessionID string, asStaff bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for i := range s.snap.Messages {
		m := &s.snap.Messages[i]
		if m.SessionID != sessionID {
			continue
		}
		if asStaff && !m.ReadByAdmin {
			m.ReadByAdmin = true
			changed = true
		}
		if !asStaff && !m.ReadByUser {
			m.ReadByUser = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.persist(); err != nil {
		return err
	}
	s.publish(EventMessagesRead, sessionID)
	return nil
}

func (s *LocalStore) UnreadCount(_ context.Context, sessionID string, asStaff bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, m := range s.snap.Messages {
		if m.SessionID != sessionID {
			continue
		}
		if asStaff && !m.ReadByAdmin {
			count++
		}
		if !asStaff && !m.ReadByUser {
			count++
		}
	}
	return count, nil
}

// SetBlocked переключает блокировку сессии.
func (s *LocalStore) SetBlocked(sessionID string, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blocked {
		s.snap.Blocked[sessionID] = true
	} else {
		delete(s.snap.Blocked, sessionID)
	}
	for i := range s.snap.Tickets {
		if s.snap.Tickets[i].SessionID == sessionID {
			s.snap.Tickets[i].IsBlocked = blocked
		}
	}
	if err := s.persist(); err != nil {
		return err
	}
	s.publish(EventTicketUpdated, sessionID)
	return nil
}

// UploadMedia в локальном режиме складывает файл рядом со снимком.
func (s *LocalStore) UploadMedia(_ context.Context, filename string, size int64, r io.Reader) (string, error) {
	if err := validateUpload(filename, size); err != nil {
		return "", err
	}
	if s.opts.SnapshotPath == "" {
		return "", &TransportError{Op: "local upload", Err: errors.New("no snapshot path configured")}
	}
	dir := filepath.Join(filepath.Dir(s.opts.SnapshotPath), "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &TransportError{Op: "local upload", Err: err}
	}
	name := fmt.Sprintf("%d_%s", s.opts.Now().UnixMilli(), filepath.Base(filename))
	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", &TransportError{Op: "local upload", Err: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", &TransportError{Op: "local upload", Err: err}
	}
	return "file://" + dst, nil
}
