package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pasargamex-chat/pkg/response"
)

type SessionHandler struct {
	chat ChatService
}

func NewSessionHandler(chat ChatService) *SessionHandler {
	return &SessionHandler{chat: chat}
}

// CheckHealth answers 200 whether or not the realtime connection is up; a
// dropped connection is a degraded mode, not a failure.
func (h *SessionHandler) CheckHealth(c echo.Context) error {
	status := "ok"
	if !h.chat.IsConnected() {
		status = "degraded"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    status,
		"connected": h.chat.IsConnected(),
		"time":      time.Now().Format(time.RFC3339),
	})
}

func (h *SessionHandler) GetSession(c echo.Context) error {
	return response.Success(c, h.chat.Info())
}
