package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/domain/repository"
	"pasargamex-chat/internal/infrastructure/websocket"
)

type mockChatAPI struct {
	mock.Mock
}

var _ repository.ChatAPI = (*mockChatAPI)(nil)

func (m *mockChatAPI) ListChats(ctx context.Context) ([]*entity.Chat, error) {
	args := m.Called(ctx)
	chats, _ := args.Get(0).([]*entity.Chat)
	return chats, args.Error(1)
}

func (m *mockChatAPI) GetMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	messages, _ := args.Get(0).([]*entity.Message)
	return messages, args.Error(1)
}

func (m *mockChatAPI) SendMessage(ctx context.Context, chatID string, params repository.SendMessageParams) (*entity.Message, error) {
	args := m.Called(ctx, chatID, params)
	msg, _ := args.Get(0).(*entity.Message)
	return msg, args.Error(1)
}

func (m *mockChatAPI) CreateChat(ctx context.Context, params repository.CreateChatParams) (*entity.Chat, error) {
	args := m.Called(ctx, params)
	chat, _ := args.Get(0).(*entity.Chat)
	return chat, args.Error(1)
}

func (m *mockChatAPI) MarkChatAsRead(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *mockChatAPI) ReportStatus(ctx context.Context, status entity.PresenceStatus) error {
	return m.Called(ctx, status).Error(0)
}

func (m *mockChatAPI) Heartbeat(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockChatAPI) ListOnlineUsers(ctx context.Context) ([]entity.OnlineUser, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]entity.OnlineUser)
	return users, args.Error(1)
}

var errConnClosed = errors.New("connection closed")

type fakeConn struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	written []map[string]interface{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 32), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, errConnClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	var frame map[string]interface{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(t *testing.T, eventType string, data interface{}) {
	t.Helper()
	frame, err := json.Marshal(map[string]interface{}{"type": eventType, "data": data})
	require.NoError(t, err)
	c.inbound <- frame
}

// framesOf returns the written frames of one type.
func (c *fakeConn) framesOf(frameType string) []map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []map[string]interface{}
	for _, f := range c.written {
		if f["type"] == frameType {
			out = append(out, f)
		}
	}
	return out
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
}

var _ websocket.Dialer = (*fakeDialer)(nil)

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (websocket.Conn, error) {
	conn := newFakeConn()
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[len(d.conns)-1]
}

// recordingSender captures typing frames while online.
type recordingSender struct {
	mu     sync.Mutex
	frames []entity.TypingFrame
	online bool
}

func (r *recordingSender) Send(frameType string, payload interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.online {
		return false
	}
	if frame, ok := payload.(entity.TypingFrame); ok && frameType == entity.FrameTyping {
		r.frames = append(r.frames, frame)
	}
	return true
}

func (r *recordingSender) sent() []entity.TypingFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.TypingFrame(nil), r.frames...)
}

// recordingReporter captures presence reports in order.
type recordingReporter struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingReporter) ReportStatus(ctx context.Context, status entity.PresenceStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, string(status))
	return r.err
}

func (r *recordingReporter) Heartbeat(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "heartbeat")
	return r.err
}

func (r *recordingReporter) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
