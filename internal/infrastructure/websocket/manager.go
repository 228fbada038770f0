package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

const defaultDialTimeout = 15 * time.Second

// Manager owns the single realtime connection of one signed-in user. It
// dials, dispatches inbound frames, writes outbound frames and restores the
// connection after it drops, keeping at most one reconnect pending.
type Manager struct {
	mu sync.Mutex

	dialer   Dialer
	baseURL  string
	token    string
	policy   backoff.BackOff
	handler  EventHandler
	onOpen   func()
	onClose  func()
	dialWait time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	userID         string
	conn           Conn
	dialing        bool
	reconnectTimer *time.Timer
	timerGen       uint64
	closed         bool

	connected atomic.Bool
}

// NewManager creates a manager. A nil policy reconnects every 3 seconds.
func NewManager(dialer Dialer, baseURL, token string, policy backoff.BackOff, handler EventHandler) *Manager {
	if policy == nil {
		policy = backoff.NewConstantBackOff(3 * time.Second)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		dialer:   dialer,
		baseURL:  baseURL,
		token:    token,
		policy:   policy,
		handler:  handler,
		dialWait: defaultDialTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnOpen registers a callback run after every successful connect, before
// inbound frames are read. Must be set before Connect.
func (m *Manager) OnOpen(fn func()) {
	m.mu.Lock()
	m.onOpen = fn
	m.mu.Unlock()
}

// OnClose registers a callback run each time an open connection drops.
func (m *Manager) OnClose(fn func()) {
	m.mu.Lock()
	m.onClose = fn
	m.mu.Unlock()
}

func (m *Manager) IsConnected() bool {
	return m.connected.Load()
}

func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.userID
}

// Connect opens the connection for userID in the background. It does nothing
// while a connection is open or being dialed. A pending reconnect is
// cancelled and replaced by an immediate attempt.
func (m *Manager) Connect(userID string) {
	m.mu.Lock()
	if m.closed || m.conn != nil || m.dialing {
		m.mu.Unlock()
		return
	}
	m.userID = userID
	m.stopTimerLocked()
	m.dialing = true
	m.mu.Unlock()

	go m.dial(userID)
}

func (m *Manager) dial(userID string) {
	ctx, cancel := context.WithTimeout(m.ctx, m.dialWait)
	conn, err := m.dialer.Dial(ctx, Endpoint(m.baseURL, userID, m.token))
	cancel()

	m.mu.Lock()
	m.dialing = false
	if m.closed {
		m.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		metrics.WSConnectAttempts.WithLabelValues("error").Inc()
		logger.Warn("Realtime connect for user %s failed: %v", userID, err)
		m.scheduleReconnectLocked()
		m.mu.Unlock()
		return
	}

	m.conn = conn
	m.policy.Reset()
	m.stopTimerLocked()
	m.connected.Store(true)
	onOpen := m.onOpen
	m.mu.Unlock()

	metrics.WSConnectAttempts.WithLabelValues("ok").Inc()
	metrics.SetConnected(true)
	logger.Info("Realtime connection open for user %s", userID)

	if onOpen != nil {
		onOpen()
	}
	go m.readLoop(conn)
}

func (m *Manager) readLoop(conn Conn) {
	for {
		frame, err := conn.ReadMessage()
		if err != nil {
			m.handleClose(conn, err)
			return
		}
		dispatch(m.handler, frame)
	}
}

func (m *Manager) handleClose(conn Conn, cause error) {
	m.mu.Lock()
	if m.conn != conn {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.connected.Store(false)

	closed := m.closed
	if !closed {
		logger.Warn("Realtime connection for user %s closed: %v", m.userID, cause)
		m.scheduleReconnectLocked()
	}
	onClose := m.onClose
	m.mu.Unlock()

	// Closing may block on the close handshake.
	conn.Close()
	metrics.SetConnected(false)
	if !closed && onClose != nil {
		onClose()
	}
}

func (m *Manager) scheduleReconnectLocked() {
	if m.closed || m.reconnectTimer != nil {
		return
	}

	delay := m.policy.NextBackOff()
	if delay == backoff.Stop {
		logger.Error("Realtime reconnect policy gave up for user %s", m.userID)
		return
	}

	m.timerGen++
	gen := m.timerGen
	m.reconnectTimer = time.AfterFunc(delay, func() { m.reconnect(gen) })
	metrics.WSReconnectsScheduled.Inc()
	logger.Debug("Realtime reconnect for user %s in %s", m.userID, delay)
}

func (m *Manager) stopTimerLocked() {
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	// Invalidates a timer that already fired but has not taken the lock yet.
	m.timerGen++
}

func (m *Manager) reconnect(gen uint64) {
	m.mu.Lock()
	if gen != m.timerGen {
		m.mu.Unlock()
		return
	}
	m.reconnectTimer = nil
	if m.closed || m.conn != nil || m.dialing {
		m.mu.Unlock()
		return
	}
	m.dialing = true
	userID := m.userID
	m.mu.Unlock()

	m.dial(userID)
}

// Send writes one outbound frame. Frames are dropped, not queued, while the
// connection is down; the return value reports whether it was written.
func (m *Manager) Send(frameType string, payload interface{}) bool {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil || !m.connected.Load() {
		metrics.WSFramesDropped.WithLabelValues(metrics.DropOffline).Inc()
		logger.Debug("Dropping %s frame while offline", frameType)
		return false
	}

	frame, err := EncodeFrame(frameType, payload)
	if err != nil {
		logger.Error("Failed to encode %s frame: %v", frameType, err)
		metrics.WSFramesDropped.WithLabelValues(metrics.DropMalformed).Inc()
		return false
	}

	if err := conn.WriteMessage(frame); err != nil {
		logger.Warn("Failed to write %s frame: %v", frameType, err)
		metrics.WSFramesDropped.WithLabelValues(metrics.DropWriteError).Inc()
		// The read loop sees the close and schedules the reconnect.
		conn.Close()
		return false
	}

	metrics.WSFramesSent.WithLabelValues(frameType).Inc()
	return true
}

// Close tears the connection down for good and cancels any pending
// reconnect. The manager cannot be reused.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.stopTimerLocked()
	conn := m.conn
	m.conn = nil
	m.connected.Store(false)
	m.mu.Unlock()

	m.cancel()
	if conn != nil {
		conn.Close()
	}
	metrics.SetConnected(false)
	logger.Info("Realtime connection closed for user %s", m.UserID())
}
