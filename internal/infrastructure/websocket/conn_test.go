package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGorillaTransportRoundTrip(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan string, 4)
	paths := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path + "?" + r.URL.RawQuery
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		err = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"user_online","data":{"user_id":"seller-1"}}`))
		if !assert.NoError(t, err) {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(data)
		}
	}))
	defer srv.Close()

	handler := &recordingHandler{}
	baseURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	m := NewManager(NewGorillaDialer("tok"), baseURL, "tok", backoff.NewConstantBackOff(time.Hour), handler)
	defer m.Close()

	m.Connect("buyer-1")
	require.Eventually(t, m.IsConnected, 2*time.Second, 10*time.Millisecond)

	select {
	case path := <-paths:
		assert.Equal(t, "/ws/buyer-1?token=tok", path)
	case <-time.After(time.Second):
		t.Fatal("server saw no handshake")
	}

	require.Eventually(t, func() bool { return len(handler.onlineIDs()) == 1 }, time.Second, 10*time.Millisecond)

	require.True(t, m.Send("subscribe_chat", map[string]string{"chat_id": "c1"}))
	select {
	case frame := <-received:
		assert.JSONEq(t, `{"type":"subscribe_chat","chat_id":"c1"}`, frame)
	case <-time.After(time.Second):
		t.Fatal("server received no frame")
	}
}

func TestGorillaDialErrorRedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	baseURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, err := NewGorillaDialer("").Dial(context.Background(), Endpoint(baseURL, "buyer-1", "secret"))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "404")
}
