package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasargamex-chat/internal/domain/entity"
)

func TestDispatchRoutesByType(t *testing.T) {
	h := &recordingHandler{}

	dispatch(h, []byte(`{"type":"new_message","data":{"chat_id":"c1","message":{"id":"m1","sender_id":"u2","type":"text","content":"halo"}}}`))
	dispatch(h, []byte(`{"type":"user_online","data":{"user_id":"u2"}}`))
	dispatch(h, []byte(`{"type":"user_offline","data":{"user_id":"u2"}}`))
	dispatch(h, []byte(`{"type":"user_typing","data":{"user_id":"u2","chat_id":"c1","is_typing":true}}`))
	dispatch(h, []byte(`{"type":"message_read","data":{"chat_id":"c1","user_id":"u2","message_id":"m1"}}`))

	require.Len(t, h.messages, 1)
	assert.Equal(t, "c1", h.messages[0].Message.ChatID)
	assert.Equal(t, "halo", h.messages[0].Message.Content.Text)
	assert.Equal(t, []string{"u2"}, h.online)
	assert.Equal(t, []string{"u2"}, h.offline)
	require.Len(t, h.typing, 1)
	assert.True(t, h.typing[0].IsTyping)
	require.Len(t, h.reads, 1)
	assert.Equal(t, "m1", h.reads[0].MessageID)
	assert.NotEmpty(t, h.reads[0].Raw)
}

func TestDispatchAcceptsFlatPayload(t *testing.T) {
	h := &recordingHandler{}
	dispatch(h, []byte(`{"type":"user_typing","user_id":"u2","chat_id":"c1","is_typing":false}`))

	require.Len(t, h.typing, 1)
	assert.Equal(t, entity.TypingEvent{UserID: "u2", ChatID: "c1", IsTyping: false}, h.typing[0])
}

func TestDispatchDropsIncompleteEvents(t *testing.T) {
	h := &recordingHandler{}

	dispatch(h, []byte(`{"type":"new_message","data":{"chat_id":"c1","message":{"sender_id":"u2"}}}`))
	dispatch(h, []byte(`{"type":"user_online","data":{}}`))
	dispatch(h, []byte(`{"type":"user_typing","data":{"user_id":"u2"}}`))
	dispatch(h, []byte(`[]`))
	dispatch(h, []byte(``))

	assert.Empty(t, h.messages)
	assert.Empty(t, h.online)
	assert.Empty(t, h.typing)
}

type panickyHandler struct{ recordingHandler }

func (*panickyHandler) OnUserOnline(entity.PresenceEvent) { panic("boom") }

func TestDispatchRecoversFromHandlerPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		dispatch(&panickyHandler{}, []byte(`{"type":"user_online","data":{"user_id":"u2"}}`))
	})
}

func TestEncodeFrameFlattensPayload(t *testing.T) {
	frame, err := EncodeFrame(entity.FrameSubscribeChat, entity.SubscribeFrame{ChatID: "c1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subscribe_chat","chat_id":"c1"}`, string(frame))

	_, err = EncodeFrame("typing", []string{"not", "an", "object"})
	assert.Error(t, err)
}
