package handler

import (
	"github.com/labstack/echo/v4"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/internal/usecase"
	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/response"
	"pasargamex-chat/pkg/utils"
)

type ChatHandler struct {
	chat ChatService
}

func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type createChatRequest struct {
	RecipientID    string `json:"recipient_id" validate:"required"`
	ProductID      string `json:"product_id" validate:"required"`
	InitialMessage string `json:"initial_message" validate:"max=4000"`
}

type sendMessageRequest struct {
	Type     string `json:"type" validate:"required,oneof=text image video"`
	Text     string `json:"text" validate:"max=4000"`
	MediaURL string `json:"media_url" validate:"omitempty,url"`
	Caption  string `json:"caption" validate:"max=1000"`
	ReplyTo  string `json:"reply_to"`
}

type chatStateResponse struct {
	ChatID     string   `json:"chat_id"`
	Subscribed bool     `json:"subscribed"`
	Typing     []string `json:"typing"`
}

// GetChats lists cached conversation summaries, most recent first.
func (h *ChatHandler) GetChats(c echo.Context) error {
	params := utils.GetWindowParams(c, utils.DefaultLimit)
	chats := h.chat.Conversations()
	return response.SuccessPaginated(c, utils.Window(chats, params), int64(len(chats)), params.Limit, params.Offset)
}

// CreateChat opens a conversation with a product's seller.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chat.StartChatFromProduct(c.Request().Context(), req.RecipientID, req.ProductID, req.InitialMessage)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, chat)
}

func (h *ChatHandler) MarkChatAsRead(c echo.Context) error {
	chatID := c.Param("id")
	if err := h.chat.MarkChatAsRead(c.Request().Context(), chatID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"chat_id": chatID})
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	params := utils.GetWindowParams(c, 50)
	messages := h.chat.Messages(c.Param("id"))
	return response.SuccessPaginated(c, utils.Window(messages, params), int64(len(messages)), params.Limit, params.Offset)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chat.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		ChatID:   c.Param("id"),
		Type:     entity.MessageType(req.Type),
		Text:     req.Text,
		MediaURL: req.MediaURL,
		Caption:  req.Caption,
		ReplyTo:  req.ReplyTo,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, msg)
}

// Subscribe starts live delivery for the chat. A history failure is
// reported but the subscription stays in place.
func (h *ChatHandler) Subscribe(c echo.Context) error {
	chatID := c.Param("id")
	if err := h.chat.SubscribeToChat(c.Request().Context(), chatID); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, h.state(chatID))
}

func (h *ChatHandler) Unsubscribe(c echo.Context) error {
	chatID := c.Param("id")
	h.chat.UnsubscribeFromChat(chatID)
	return response.Success(c, h.state(chatID))
}

func (h *ChatHandler) GetTyping(c echo.Context) error {
	return response.Success(c, h.state(c.Param("id")))
}

// Keystroke records one local keystroke in the chat's composer.
func (h *ChatHandler) Keystroke(c echo.Context) error {
	chatID := c.Param("id")
	h.chat.Keystroke(chatID)
	return response.Success(c, h.state(chatID))
}

func (h *ChatHandler) StopTyping(c echo.Context) error {
	chatID := c.Param("id")
	h.chat.StopTyping(chatID)
	return response.Success(c, h.state(chatID))
}

func (h *ChatHandler) state(chatID string) chatStateResponse {
	return chatStateResponse{
		ChatID:     chatID,
		Subscribed: h.chat.IsSubscribed(chatID),
		Typing:     h.chat.TypingUsers(chatID),
	}
}
