package entity

import (
	"encoding/json"
	"time"
)

// Inbound realtime event types.
const (
	EventNewMessage  = "new_message"
	EventUserOnline  = "user_online"
	EventUserOffline = "user_offline"
	EventUserTyping  = "user_typing"
	EventMessageRead = "message_read"
)

// Outbound realtime frame types.
const (
	FrameSubscribeChat   = "subscribe_chat"
	FrameUnsubscribeChat = "unsubscribe_chat"
	FrameTyping          = "typing"
)

type NewMessageEvent struct {
	ChatID  string  `json:"chat_id"`
	Message Message `json:"message"`
}

type PresenceEvent struct {
	UserID string `json:"user_id"`
}

type TypingEvent struct {
	UserID   string `json:"user_id"`
	ChatID   string `json:"chat_id"`
	IsTyping bool   `json:"is_typing"`
}

// MessageReadEvent has no fixed shape; the known fields are picked out and
// the rest is kept raw.
type MessageReadEvent struct {
	ChatID    string          `json:"chat_id"`
	UserID    string          `json:"user_id"`
	MessageID string          `json:"message_id,omitempty"`
	ReadAt    time.Time       `json:"read_at,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

type SubscribeFrame struct {
	ChatID string `json:"chat_id"`
}

type TypingFrame struct {
	ChatID   string `json:"chat_id"`
	IsTyping bool   `json:"is_typing"`
}
