package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pasargamex-chat/internal/adapter/api/handler"
	"pasargamex-chat/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, chat handler.ChatService, authMiddleware *middleware.AuthMiddleware) {
	sessionHandler := handler.NewSessionHandler(chat)
	chatHandler := handler.NewChatHandler(chat)
	presenceHandler := handler.NewPresenceHandler(chat)

	e.GET("/health", sessionHandler.CheckHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.Use(authMiddleware.Authenticate)
	v1.GET("/session", sessionHandler.GetSession)

	SetupChatRouter(v1, chatHandler)
	SetupPresenceRouter(v1, presenceHandler)
}
