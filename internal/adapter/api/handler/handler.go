package handler

import (
	"context"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/usecase"
)

// ChatService is the session surface the local HTTP API exposes.
type ChatService interface {
	Info() usecase.SessionInfo
	IsConnected() bool

	Conversations() []*entity.Chat
	Conversation(chatID string) (*entity.Chat, bool)
	StartChatFromProduct(ctx context.Context, sellerID, productID, initialMessage string) (*entity.Chat, error)
	MarkChatAsRead(ctx context.Context, chatID string) error

	Messages(chatID string) []entity.Message
	SendMessage(ctx context.Context, in usecase.SendMessageInput) (*entity.Message, error)
	SubscribeToChat(ctx context.Context, chatID string) error
	UnsubscribeFromChat(chatID string)
	IsSubscribed(chatID string) bool

	Keystroke(chatID string)
	StopTyping(chatID string)
	TypingUsers(chatID string) []string

	IsOnline(userID string) bool
	OnlineUsers() []string
	SetVisibility(visible bool)
}

var _ ChatService = (*usecase.ChatSession)(nil)
