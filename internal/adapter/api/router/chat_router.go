package router

import (
	"github.com/labstack/echo/v4"

	"pasargamex-chat/internal/adapter/api/handler"
)

func SetupChatRouter(v1 *echo.Group, chatHandler *handler.ChatHandler) {
	chatGroup := v1.Group("/chats")

	chatGroup.GET("", chatHandler.GetChats)               // GET /v1/chats - Cached conversation list
	chatGroup.POST("", chatHandler.CreateChat)            // POST /v1/chats - Start chat from a product
	chatGroup.PUT("/:id/read", chatHandler.MarkChatAsRead) // PUT /v1/chats/:id/read - Mark chat as read

	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages) // GET /v1/chats/:id/messages - Local timeline
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)    // POST /v1/chats/:id/messages - Send message

	chatGroup.POST("/:id/subscription", chatHandler.Subscribe)     // POST /v1/chats/:id/subscription - Start live updates
	chatGroup.DELETE("/:id/subscription", chatHandler.Unsubscribe) // DELETE /v1/chats/:id/subscription - Stop live updates

	chatGroup.GET("/:id/typing", chatHandler.GetTyping)     // GET /v1/chats/:id/typing - Who is typing
	chatGroup.POST("/:id/typing", chatHandler.Keystroke)    // POST /v1/chats/:id/typing - Local keystroke
	chatGroup.DELETE("/:id/typing", chatHandler.StopTyping) // DELETE /v1/chats/:id/typing - Local typing stopped
}
