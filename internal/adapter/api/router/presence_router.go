package router

import (
	"github.com/labstack/echo/v4"

	"pasargamex-chat/internal/adapter/api/handler"
)

func SetupPresenceRouter(v1 *echo.Group, presenceHandler *handler.PresenceHandler) {
	presenceGroup := v1.Group("/presence")

	presenceGroup.GET("", presenceHandler.GetOnlineUsers)
	presenceGroup.GET("/:userId", presenceHandler.GetUserPresence)
	presenceGroup.PUT("/visibility", presenceHandler.SetVisibility)
}
