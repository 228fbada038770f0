package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/domain/repository"
	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
	"pasargamex-chat/pkg/response"
)

// Client talks to the marketplace backend on behalf of one signed-in user.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ repository.ChatAPI = (*Client)(nil)

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope is the backend's response shape with data left undecoded.
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorInfo `json:"error"`
}

type page struct {
	Items json.RawMessage `json:"items"`
	Total int64           `json:"total"`
}

func (c *Client) ListChats(ctx context.Context) ([]*entity.Chat, error) {
	var chats []*entity.Chat
	if err := c.getPage(ctx, "list_chats", "/v1/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetMessages fetches a history window. The backend pages newest first; the
// result is flipped so callers can seed a timeline in display order.
func (c *Client) GetMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var messages []*entity.Message
	path := "/v1/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.getPage(ctx, "get_messages", path, query, &messages); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID string, params repository.SendMessageParams) (*entity.Message, error) {
	var msg entity.Message
	path := "/v1/chats/" + url.PathEscape(chatID) + "/messages"
	if err := c.do(ctx, "send_message", http.MethodPost, path, nil, params, &msg); err != nil {
		return nil, err
	}
	if msg.ChatID == "" {
		msg.ChatID = chatID
	}
	return &msg, nil
}

// CreateChat opens (or returns the existing) direct chat with the recipient.
func (c *Client) CreateChat(ctx context.Context, params repository.CreateChatParams) (*entity.Chat, error) {
	var chat entity.Chat
	if err := c.do(ctx, "create_chat", http.MethodPost, "/v1/chats", nil, params, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (c *Client) MarkChatAsRead(ctx context.Context, chatID string) error {
	path := "/v1/chats/" + url.PathEscape(chatID) + "/read"
	return c.do(ctx, "mark_read", http.MethodPut, path, nil, nil, nil)
}

func (c *Client) ReportStatus(ctx context.Context, status entity.PresenceStatus) error {
	body := map[string]entity.PresenceStatus{"status": status}
	return c.do(ctx, "report_status", http.MethodPut, "/v1/presence/status", nil, body, nil)
}

func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, "heartbeat", http.MethodPost, "/v1/presence/heartbeat", nil, nil, nil)
}

func (c *Client) ListOnlineUsers(ctx context.Context) ([]entity.OnlineUser, error) {
	var users []entity.OnlineUser
	if err := c.do(ctx, "list_online", http.MethodGet, "/v1/presence/online", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) getPage(ctx context.Context, op, path string, query url.Values, out interface{}) error {
	var p page
	if err := c.do(ctx, op, http.MethodGet, path, query, nil, &p); err != nil {
		return err
	}
	if len(p.Items) == 0 || string(p.Items) == "null" {
		return nil
	}
	if err := json.Unmarshal(p.Items, out); err != nil {
		return apperrors.Internal("Failed to decode "+op+" items", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) (err error) {
	defer func() {
		metrics.RESTRequests.WithLabelValues(op, metrics.Result(err)).Inc()
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return apperrors.Internal("Failed to encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apperrors.Internal("Failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("REST %s %s failed (request %s): %v", method, path, requestID, err)
		return apperrors.Unavailable("Chat backend unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Unavailable("Failed to read backend response", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Success && env.Error != nil) {
		appErr := apperrors.FromStatus(resp.StatusCode, "", "")
		if decodeErr == nil && env.Error != nil {
			appErr = apperrors.FromStatus(resp.StatusCode, env.Error.Code, env.Error.Message)
		}
		if appErr.Status < http.StatusBadRequest {
			appErr.Status = http.StatusBadGateway
		}
		logger.Debug("REST %s %s returned %d %s (request %s)", method, path, resp.StatusCode, appErr.Code, requestID)
		return appErr
	}

	if decodeErr != nil {
		return apperrors.Internal(fmt.Sprintf("Unexpected %s response", op), decodeErr)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.Internal(fmt.Sprintf("Failed to decode %s response", op), err)
	}
	return nil
}
