package repository

import (
	"context"

	"pasargamex-chat/internal/domain/entity"
)

type SendMessageParams struct {
	Type    entity.MessageType    `json:"type"`
	Content entity.MessageContent `json:"content"`
	ReplyTo string                `json:"reply_to,omitempty"`
}

// CreateChatParams opens a direct chat with RecipientID, anchored to a
// product when ProductID is set.
type CreateChatParams struct {
	RecipientID    string `json:"recipient_id"`
	ProductID      string `json:"product_id,omitempty"`
	InitialMessage string `json:"initial_message,omitempty"`
}

// ChatAPI is the marketplace backend's REST surface consumed by the chat core.
// History pages are returned oldest first.
type ChatAPI interface {
	ListChats(ctx context.Context) ([]*entity.Chat, error)
	GetMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, error)
	SendMessage(ctx context.Context, chatID string, params SendMessageParams) (*entity.Message, error)
	CreateChat(ctx context.Context, params CreateChatParams) (*entity.Chat, error)
	MarkChatAsRead(ctx context.Context, chatID string) error

	ReportStatus(ctx context.Context, status entity.PresenceStatus) error
	Heartbeat(ctx context.Context) error
	ListOnlineUsers(ctx context.Context) ([]entity.OnlineUser, error)
}
