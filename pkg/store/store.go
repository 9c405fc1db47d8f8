// Package store — граница хранения для клиентов поддержки: единый интерфейс
// RemoteStore поверх HTTP API сервера либо локального fallback-хранилища.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Статусы заявки на стороне клиента (зеркало серверного набора).
const (
	StatusNew        = "new"
	StatusProcessed  = "processed"
	StatusInProgress = "in_progress"
	StatusScam       = "scam"
	StatusPaid       = "paid"
	StatusClosed     = "closed"
)

var (
	// ErrRateLimited — отправитель заблокирован или превышен лимит заявок.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound — заявка или сессия отсутствуют.
	ErrNotFound = errors.New("not found")
	// ErrPayloadTooLarge — файл больше допустимого (5MB изображения, 10MB PDF).
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrUnsupportedType — не изображение и не PDF.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptyMessage — нет ни текста, ни вложения.
	ErrEmptyMessage = errors.New("message or image required")
)

// TransportError — сбой сети или хранилища. Поллинг такие ошибки логирует
// и продолжает со следующего тика.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport сообщает, является ли ошибка транспортной.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

type Ticket struct {
	ID              uint64    `json:"id"`
	SessionID       string    `json:"session_id"`
	Amount          string    `json:"amount"`
	UserName        string    `json:"user_name,omitempty"`
	Status          string    `json:"status"`
	AssignedManager string    `json:"assigned_manager,omitempty"`
	IsBlocked       bool      `json:"is_blocked"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	UnreadMessages  int       `json:"unread_messages"`
}

type Message struct {
	ID          uint64    `json:"id"`
	SessionID   string    `json:"session_id"`
	Body        string    `json:"message"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsAdmin     bool      `json:"is_admin"`
	UserName    string    `json:"user_name,omitempty"`
	ManagerName string    `json:"manager_name,omitempty"`
	ReadByUser  bool      `json:"read_by_user"`
	ReadByAdmin bool      `json:"read_by_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageInput struct {
	SessionID   string
	Body        string
	ImageURL    string
	IsStaff     bool
	UserName    string
	ManagerName string
}

// RemoteStore — абстракция бэкенда. Реализации: Client (HTTP API)
// и LocalStore (локальное хранилище без бэкенда).
type RemoteStore interface {
	// ListMessages возвращает сообщения сессии от старых к новым.
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)
	// SendMessage сохраняет сообщение; для клиентских отправок из
	// заблокированной сессии возвращает ErrRateLimited.
	SendMessage(ctx context.Context, input SendMessageInput) (*Message, error)
	// ListTickets возвращает заявки от недавно обновлённых к старым.
	ListTickets(ctx context.Context, status string) ([]Ticket, error)
	// CreateTicket заводит заявку; ErrRateLimited при 5 заявках за 24 часа
	// или заблокированной сессии.
	CreateTicket(ctx context.Context, sessionID, amount, userName string) (*Ticket, error)
	UpdateTicketStatus(ctx context.Context, id uint64, status string) (*Ticket, error)
	// UpdateTicketManager назначает менеджера; пустая строка снимает назначение.
	UpdateTicketManager(ctx context.Context, id uint64, manager string) (*Ticket, error)
	DeleteTicket(ctx context.Context, id uint64) error
	// DeleteConversation удаляет все сообщения и заявки сессии.
	DeleteConversation(ctx context.Context, sessionID string) error
	// MarkRead идемпотентно помечает сообщения прочитанными читающей стороной.
	MarkRead(ctx context.Context, sessionID string, asStaff bool) error
	UnreadCount(ctx context.Context, sessionID string, asStaff bool) (int, error)
	// UploadMedia проверяет размер и тип до любой отправки,
	// затем сохраняет вложение и возвращает публичный URL.
	UploadMedia(ctx context.Context, filename string, size int64, r io.Reader) (string, error)
}
