package handler

import (
	"github.com/labstack/echo/v4"

	apperrors "pasargamex-chat/pkg/errors"
	"pasargamex-chat/pkg/response"
)

type PresenceHandler struct {
	chat ChatService
}

func NewPresenceHandler(chat ChatService) *PresenceHandler {
	return &PresenceHandler{chat: chat}
}

type visibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

func (h *PresenceHandler) GetOnlineUsers(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"online": h.chat.OnlineUsers(),
	})
}

func (h *PresenceHandler) GetUserPresence(c echo.Context) error {
	userID := c.Param("userId")
	return response.Success(c, map[string]interface{}{
		"user_id": userID,
		"online":  h.chat.IsOnline(userID),
	})
}

// SetVisibility forwards the page visibility; hidden reports away.
func (h *PresenceHandler) SetVisibility(c echo.Context) error {
	var req visibilityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, apperrors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	h.chat.SetVisibility(*req.Visible)
	return response.Success(c, map[string]bool{"visible": *req.Visible})
}
