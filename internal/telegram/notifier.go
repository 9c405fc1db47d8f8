package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier шлёт уведомления менеджерам в Telegram (best-effort, не блокирует API).
type Notifier struct {
	apiBase    string
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewNotifier возвращает нотификатор. Если botToken или chatID пустые, вызовы — no-op.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewNotifierWithBase — как NewNotifier, но с другим адресом Telegram API (для тестов).
func NewNotifierWithBase(apiBase, botToken, chatID string) *Notifier {
	n := NewNotifier(botToken, chatID)
	n.apiBase = apiBase
	return n
}

func (n *Notifier) enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

func (n *Notifier) send(ctx context.Context, text string) {
	payload := map[string]string{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("telegram: marshal: %v", err)
		return
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Printf("telegram: new request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("telegram: request: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("telegram: status %d", resp.StatusCode)
	}
}

// NotifyTicket отправляет уведомление о новой заявке.
func (n *Notifier) NotifyTicket(ctx context.Context, ticketID uint64, userName, amount string) {
	if !n.enabled() {
		return
	}
	if userName == "" {
		userName = "Не указано"
	}
	text := fmt.Sprintf(
		"🔔 <b>Новая заявка #%d</b>\n\n👤 <b>Клиент:</b> %s\n💰 <b>Сумма:</b> %s ₽\n\n⏰ Требует внимания!",
		ticketID, userName, amount)
	n.send(ctx, text)
}

// NotifyMessage отправляет уведомление о новом сообщении клиента.
func (n *Notifier) NotifyMessage(ctx context.Context, ticketRef, userName, text string) {
	if !n.enabled() {
		return
	}
	if userName == "" {
		userName = "Аноним"
	}
	body := fmt.Sprintf(
		"📩 <b>Новое сообщение</b>\n\n🎫 Заявка: <code>#%s</code>\n👤 От: <b>%s</b>\n💬 Сообщение:\n%s",
		ticketRef, userName, text)
	n.send(ctx, body)
}

// NotifyTicketAsync вызывает NotifyTicket в отдельной горутине (не блокирует ответ API).
func (n *Notifier) NotifyTicketAsync(ticketID uint64, userName, amount string) {
	if !n.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n.NotifyTicket(ctx, ticketID, userName, amount)
	}()
}

// NotifyMessageAsync вызывает NotifyMessage в отдельной горутине.
func (n *Notifier) NotifyMessageAsync(ticketRef, userName, text string) {
	if !n.enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n.NotifyMessage(ctx, ticketRef, userName, text)
	}()
}
