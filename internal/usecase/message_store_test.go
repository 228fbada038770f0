package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasargamex-chat/internal/domain/entity"
)

func textMessage(id, sender, text string) *entity.Message {
	return &entity.Message{ID: id, SenderID: sender, Type: entity.MessageTypeText, Content: entity.TextContent(text)}
}

func ids(messages []entity.Message) []string {
	out := make([]string, len(messages))
	for i, m := range messages {
		out[i] = m.ID
	}
	return out
}

func TestAppendKeepsEachIDOnce(t *testing.T) {
	store := NewMessageStore()
	sequence := []string{"m1", "m2", "m1", "m3", "m2", "m2", "m4", "m1", "m3"}

	added := 0
	for _, id := range sequence {
		if store.Append("c1", textMessage(id, "u1", "x")) {
			added++
		}
	}

	assert.Equal(t, 4, added)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4"}, ids(store.Get("c1")))
}

func TestAppendNeverReordersByTimestamp(t *testing.T) {
	store := NewMessageStore()
	late := textMessage("m2", "u1", "later")
	late.CreatedAt = late.CreatedAt.AddDate(1, 0, 0)
	early := textMessage("m1", "u1", "earlier")

	store.Append("c1", late)
	store.Append("c1", early)

	assert.Equal(t, []string{"m2", "m1"}, ids(store.Get("c1")))
}

func TestInitializeKeepsLivePushesThatRacedAhead(t *testing.T) {
	store := NewMessageStore()

	// A push arrives before the history request resolves.
	store.Append("c1", textMessage("m3", "u2", "live"))

	store.Initialize("c1", []*entity.Message{textMessage("m1", "u1", "a"), textMessage("m2", "u2", "b")})
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(store.Get("c1")))

	// A later seed that now contains the live message does not duplicate it.
	store.Initialize("c1", []*entity.Message{textMessage("m1", "u1", "a"), textMessage("m2", "u2", "b"), textMessage("m3", "u2", "live")})
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(store.Get("c1")))

	assert.False(t, store.Append("c1", textMessage("m2", "u2", "b")))
	assert.Len(t, store.Get("c1"), 3)
}

func TestInitializeDeduplicatesSeed(t *testing.T) {
	store := NewMessageStore()
	store.Initialize("c1", []*entity.Message{textMessage("m1", "u1", "a"), nil, textMessage("m1", "u1", "a"), {ID: ""}})

	messages := store.Get("c1")
	require.Len(t, messages, 1)
	assert.Equal(t, "c1", messages[0].ChatID)
}

func TestAppendRejectsMessageWithoutID(t *testing.T) {
	store := NewMessageStore()
	assert.False(t, store.Append("c1", &entity.Message{}))
	assert.False(t, store.Append("c1", nil))
	assert.Empty(t, store.Get("c1"))
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	store := NewMessageStore()
	store.Append("c1", textMessage("m1", "u1", "original"))

	got := store.Get("c1")
	got[0].Content = entity.TextContent("changed")

	assert.Equal(t, "original", store.Get("c1")[0].Content.Text)
	assert.True(t, store.Has("c1", "m1"))
	assert.False(t, store.Has("c2", "m1"))
}

func TestForgetDropsOnlyThatChat(t *testing.T) {
	store := NewMessageStore()
	store.Append("c1", textMessage("m1", "u1", "a"))
	store.Append("c2", textMessage("m2", "u1", "b"))

	store.Forget("c1")

	assert.Empty(t, store.Get("c1"))
	assert.Equal(t, []string{"m2"}, ids(store.Get("c2")))
}
