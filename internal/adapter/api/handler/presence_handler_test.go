package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOnlineUsers(t *testing.T) {
	svc := new(mockChatService)
	svc.On("OnlineUsers").Return([]string{"u2", "u3"})

	c, rec := newContext(http.MethodGet, "/v1/presence", "")
	require.NoError(t, NewPresenceHandler(svc).GetOnlineUsers(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"online":["u2","u3"]}`, string(decode(t, rec.Body.Bytes()).Data))
}

func TestGetUserPresence(t *testing.T) {
	svc := new(mockChatService)
	svc.On("IsOnline", "u2").Return(true)

	c, rec := newContext(http.MethodGet, "/v1/presence/u2", "")
	c.SetParamNames("userId")
	c.SetParamValues("u2")
	require.NoError(t, NewPresenceHandler(svc).GetUserPresence(c))

	assert.JSONEq(t, `{"user_id":"u2","online":true}`, string(decode(t, rec.Body.Bytes()).Data))
}

func TestSetVisibility(t *testing.T) {
	svc := new(mockChatService)
	svc.On("SetVisibility", false).Return()

	c, rec := newContext(http.MethodPut, "/v1/presence/visibility", `{"visible":false}`)
	require.NoError(t, NewPresenceHandler(svc).SetVisibility(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "SetVisibility", false)
}

func TestSetVisibilityRequiresField(t *testing.T) {
	svc := new(mockChatService)

	c, rec := newContext(http.MethodPut, "/v1/presence/visibility", `{}`)
	require.NoError(t, NewPresenceHandler(svc).SetVisibility(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "visible is required", decode(t, rec.Body.Bytes()).Error.Message)
	svc.AssertNotCalled(t, "SetVisibility", false)
}
