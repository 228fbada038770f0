package usecase

import (
	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/infrastructure/websocket"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

// sessionEvents routes inbound realtime events into a session's state. It
// runs on the connection's read goroutine, one event at a time.
type sessionEvents struct {
	s *ChatSession
}

var _ websocket.EventHandler = (*sessionEvents)(nil)

func (e *sessionEvents) OnNewMessage(evt entity.NewMessageEvent) {
	msg := evt.Message
	appended := false
	// A trailing push can still arrive after unsubscribe_chat was sent.
	if !e.s.ifSubscribed(evt.ChatID, func() { appended = e.s.messages.Append(evt.ChatID, &msg) }) {
		metrics.WSFramesDropped.WithLabelValues(metrics.DropUnsubscribed).Inc()
		logger.Debug("Dropping new_message for unsubscribed chat %s", evt.ChatID)
		return
	}
	if appended {
		e.s.applyToChat(evt.ChatID, &msg)
	}
}

func (e *sessionEvents) OnUserOnline(evt entity.PresenceEvent) {
	e.s.presence.SetOnline(evt.UserID)
}

func (e *sessionEvents) OnUserOffline(evt entity.PresenceEvent) {
	e.s.presence.SetOffline(evt.UserID)
}

func (e *sessionEvents) OnUserTyping(evt entity.TypingEvent) {
	if evt.UserID == e.s.userID {
		return
	}
	// Its typing(false) will not be delivered any more.
	if !e.s.ifSubscribed(evt.ChatID, func() { e.s.typing.SetTyping(evt.ChatID, evt.UserID, evt.IsTyping) }) {
		metrics.WSFramesDropped.WithLabelValues(metrics.DropUnsubscribed).Inc()
		logger.Debug("Dropping user_typing for unsubscribed chat %s", evt.ChatID)
	}
}

func (e *sessionEvents) OnMessageRead(evt entity.MessageReadEvent) {
	logger.Debug("message_read in chat %s by %s", evt.ChatID, evt.UserID)
	if evt.ChatID == "" {
		return
	}

	e.s.mu.Lock()
	e.s.readMarkers[evt.ChatID] = evt
	e.s.mu.Unlock()
}
