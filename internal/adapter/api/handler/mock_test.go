package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"pasargamex-chat/internal/adapter/api"
	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/usecase"
)

type mockChatService struct {
	mock.Mock
}

func (m *mockChatService) Info() usecase.SessionInfo {
	return m.Called().Get(0).(usecase.SessionInfo)
}

func (m *mockChatService) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *mockChatService) Conversations() []*entity.Chat {
	return m.Called().Get(0).([]*entity.Chat)
}

func (m *mockChatService) Conversation(chatID string) (*entity.Chat, bool) {
	args := m.Called(chatID)
	chat, _ := args.Get(0).(*entity.Chat)
	return chat, args.Bool(1)
}

func (m *mockChatService) StartChatFromProduct(ctx context.Context, sellerID, productID, initialMessage string) (*entity.Chat, error) {
	args := m.Called(ctx, sellerID, productID, initialMessage)
	chat, _ := args.Get(0).(*entity.Chat)
	return chat, args.Error(1)
}

func (m *mockChatService) MarkChatAsRead(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *mockChatService) Messages(chatID string) []entity.Message {
	return m.Called(chatID).Get(0).([]entity.Message)
}

func (m *mockChatService) SendMessage(ctx context.Context, in usecase.SendMessageInput) (*entity.Message, error) {
	args := m.Called(ctx, in)
	msg, _ := args.Get(0).(*entity.Message)
	return msg, args.Error(1)
}

func (m *mockChatService) SubscribeToChat(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *mockChatService) UnsubscribeFromChat(chatID string) {
	m.Called(chatID)
}

func (m *mockChatService) IsSubscribed(chatID string) bool {
	return m.Called(chatID).Bool(0)
}

func (m *mockChatService) Keystroke(chatID string) {
	m.Called(chatID)
}

func (m *mockChatService) StopTyping(chatID string) {
	m.Called(chatID)
}

func (m *mockChatService) TypingUsers(chatID string) []string {
	return m.Called(chatID).Get(0).([]string)
}

func (m *mockChatService) IsOnline(userID string) bool {
	return m.Called(userID).Bool(0)
}

func (m *mockChatService) OnlineUsers() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockChatService) SetVisibility(visible bool) {
	m.Called(visible)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = api.NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
