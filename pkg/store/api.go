package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client — реализация RemoteStore поверх HTTP API сервера.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

// NewClient создаёт клиента API. adminToken нужен только админским вызовам,
// для клиентского виджета передаётся пустая строка.
func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	op := method + " " + path
	u := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := statusError(op, resp.StatusCode); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return nil
}

func statusError(op string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case code == http.StatusUnsupportedMediaType:
		return ErrUnsupportedType
	default:
		return &TransportError{Op: op, Err: fmt.Errorf("status %d", code)}
	}
}

func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var out struct {
		Messages []Message `json:"messages"`
	}
	q := url.Values{"session": {sessionID}}
	if err := c.do(ctx, http.MethodGet, "/messages", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, input SendMessageInput) (*Message, error) {
	body := map[string]interface{}{
		"session":      input.SessionID,
		"message":      input.Body,
		"is_admin":     input.IsStaff,
		"name":         input.UserName,
		"image_url":    input.ImageURL,
		"manager_name": input.ManagerName,
	}
	var out struct {
		Message Message `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/messages", nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *Client) ListTickets(ctx context.Context, status string) ([]Ticket, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out struct {
		Tickets []Ticket `json:"tickets"`
	}
	if err := c.do(ctx, http.MethodGet, "/tickets", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Tickets, nil
}

func (c *Client) CreateTicket(ctx context.Context, sessionID, amount, userName string) (*Ticket, error) {
	body := map[string]string{
		"session": sessionID,
		"amount":  amount,
		"name":    userName,
	}
	var out Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id uint64, status string) (*Ticket, error) {
	return c.updateTicket(ctx, id, map[string]string{"status": status})
}

func (c *Client) UpdateTicketManager(ctx context.Context, id uint64, manager string) (*Ticket, error) {
	return c.updateTicket(ctx, id, map[string]string{"manager": manager})
}

func (c *Client) updateTicket(ctx context.Context, id uint64, changes map[string]string) (*Ticket, error) {
	var out Ticket
	path := "/tickets/" + strconv.FormatUint(id, 10)
	if err := c.do(ctx, http.MethodPatch, path, nil, changes, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTicket(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, "/tickets/"+strconv.FormatUint(id, 10), nil, nil, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/conversations/"+url.PathEscape(sessionID), nil, nil, nil)
}

func (c *Client) MarkRead(ctx context.Context, sessionID string, asStaff bool) error {
	q := url.Values{
		"session":  {sessionID},
		"as_staff": {strconv.FormatBool(asStaff)},
	}
	return c.do(ctx, http.MethodPatch, "/messages/read", q, nil, nil)
}

func (c *Client) UnreadCount(ctx context.Context, sessionID string, asStaff bool) (int, error) {
	q := url.Values{
		"session":  {sessionID},
		"as_staff": {strconv.FormatBool(asStaff)},
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/messages/unread-count", q, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// UploadMedia проверяет файл до обращения к сети; негодный файл не
// порождает ни одного HTTP-запроса.
func (c *Client) UploadMedia(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	if err := validateUpload(filename, size); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/media", &buf)
	if err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}
	defer resp.Body.Close()
	if err := statusError("POST /media", resp.StatusCode); err != nil {
		return "", err
	}
	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TransportError{Op: "POST /media", Err: err}
	}
	return out.URL, nil
}
