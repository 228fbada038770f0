package websocket

import (
	"context"
	"errors"
	"sync"

	"pasargamex-chat/internal/domain/entity"
)

var errFakeClosed = errors.New("fake connection closed")

type fakeConn struct {
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	broken    chan struct{}
	breakOnce sync.Once
	// closeGate, when set, holds Close until it is closed.
	closeGate chan struct{}

	mu      sync.Mutex
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
		broken:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.inbound:
		return data, nil
	case <-c.closed:
		return nil, errFakeClosed
	case <-c.broken:
		return nil, errFakeClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return errFakeClosed
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	if c.closeGate != nil {
		<-c.closeGate
	}
	return nil
}

// breakRead fails the read side without closing the connection.
func (c *fakeConn) breakRead() {
	c.breakOnce.Do(func() { close(c.broken) })
}

func (c *fakeConn) push(frame string) {
	c.inbound <- []byte(frame)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) frames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.written))
	for i, f := range c.written {
		out[i] = string(f)
	}
	return out
}

// fakeDialer hands out fakeConns. When gate is set each dial waits on it.
type fakeDialer struct {
	mu        sync.Mutex
	endpoints []string
	conns     []*fakeConn
	failNext  int
	gate      chan struct{}
	closeGate chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	d.mu.Lock()
	d.endpoints = append(d.endpoints, endpoint)
	gate := d.gate
	fail := d.failNext > 0
	if fail {
		d.failNext--
	}
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("connection refused")
	}

	conn := newFakeConn()
	conn.closeGate = d.closeGate
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDialer) dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.endpoints)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

type recordingHandler struct {
	mu       sync.Mutex
	messages []entity.NewMessageEvent
	online   []string
	offline  []string
	typing   []entity.TypingEvent
	reads    []entity.MessageReadEvent
}

func (h *recordingHandler) OnNewMessage(evt entity.NewMessageEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, evt)
}

func (h *recordingHandler) OnUserOnline(evt entity.PresenceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.online = append(h.online, evt.UserID)
}

func (h *recordingHandler) OnUserOffline(evt entity.PresenceEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.offline = append(h.offline, evt.UserID)
}

func (h *recordingHandler) OnUserTyping(evt entity.TypingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.typing = append(h.typing, evt)
}

func (h *recordingHandler) OnMessageRead(evt entity.MessageReadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reads = append(h.reads, evt)
}

func (h *recordingHandler) onlineIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.online...)
}
