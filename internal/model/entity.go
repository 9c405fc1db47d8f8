package model

import "time"

type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusProcessed  TicketStatus = "processed"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusScam       TicketStatus = "scam"
	TicketStatusPaid       TicketStatus = "paid"
	TicketStatusClosed     TicketStatus = "closed"
)

// ValidStatus проверяет, что статус входит в рабочий набор воронки заявок.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusProcessed, TicketStatusInProgress,
		TicketStatusScam, TicketStatusPaid, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket — заявка на пополнение. Amount и UserName неизменяемы после создания.
type Ticket struct {
	ID              uint64       `gorm:"primaryKey" json:"id"`
	SessionID       string       `gorm:"index;not null" json:"session_id"`
	Amount          string       `gorm:"type:varchar(32);not null" json:"amount"`
	UserName        string       `gorm:"type:varchar(128)" json:"user_name,omitempty"`
	Status          TicketStatus `gorm:"type:varchar(32);index;not null" json:"status"`
	AssignedManager string       `gorm:"type:varchar(64)" json:"assigned_manager,omitempty"`
	IsBlocked       bool         `gorm:"index;not null;default:false" json:"is_blocked"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Заполняется при выдаче списка, в БД не хранится.
	UnreadMessages int64 `gorm:"-" json:"unread_messages"`
}

// Message — одна реплика в переписке сессии. Сообщения не редактируются.
type Message struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	SessionID   string `gorm:"index;not null" json:"session_id"`
	Body        string `gorm:"type:text;column:message" json:"message"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`
	IsAdmin     bool   `gorm:"not null;default:false" json:"is_admin"`
	UserName    string `gorm:"type:varchar(128)" json:"user_name,omitempty"`
	ManagerName string `gorm:"type:varchar(64)" json:"manager_name,omitempty"`
	ReadByUser  bool   `gorm:"not null;default:false" json:"read_by_user"`
	ReadByAdmin bool   `gorm:"not null;default:false" json:"read_by_admin"`

	CreatedAt time.Time `json:"created_at"`
}

// Visitor — отметка присутствия посетителя для счётчика "онлайн".
type Visitor struct {
	SessionID string    `gorm:"primaryKey" json:"session_id"`
	Page      string    `gorm:"type:varchar(255)" json:"page,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `gorm:"index" json:"last_seen"`
}
