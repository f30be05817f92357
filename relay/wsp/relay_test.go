package wsp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqua/relay/relay"
)

// fakeWhatsAppService accepts registermessage frames and answers each
// one, capturing the received chunks.
func fakeWhatsAppService(t *testing.T, status string, received *[][]relay.Message) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for {
			var frame registerFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			*received = append(*received, frame.Mensajes)
			resp, _ := json.Marshal(serviceResponse{Op: frame.Op, Status: status})
			if err := conn.WriteMessage(websocket.TextMessage, resp); err != nil {
				return
			}
		}
	}))
}

func newTestRelay(t *testing.T, server *httptest.Server) *WhatsAppReminderRelay {
	t.Helper()
	return &WhatsAppReminderRelay{
		url:   "ws" + strings.TrimPrefix(server.URL, "http"),
		token: "test-token",
	}
}

func TestSendMessagesDeliversChunks(t *testing.T) {
	var received [][]relay.Message
	server := fakeWhatsAppService(t, "ok", &received)
	defer server.Close()

	r := newTestRelay(t, server)

	msgs := make([]relay.Message, 150)
	for i := range msgs {
		msgs[i] = relay.Message{Phone: "+549110000" + string(rune('0'+i%10)), Text: "recordatorio"}
	}
	statuses, err := r.SendMessages(context.Background(), msgs)
	require.NoError(t, err)
	require.Len(t, statuses, 150)
	for _, status := range statuses {
		assert.True(t, status.OK)
	}

	require.Len(t, received, 2, "150 messages should be split into two chunks")
	assert.Len(t, received[0], 100)
	assert.Len(t, received[1], 50)
}

func TestSendMessagesServiceRejection(t *testing.T) {
	var received [][]relay.Message
	server := fakeWhatsAppService(t, "error", &received)
	defer server.Close()

	r := newTestRelay(t, server)

	statuses, err := r.SendMessages(context.Background(), []relay.Message{
		{Phone: "+5491100000001", Text: "recordatorio"},
	})
	require.NoError(t, err, "a rejected chunk is a per-recipient failure, not a batch failure")
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].OK)
	assert.Contains(t, statuses[0].Error, "rejected")
}

func TestSendMessagesEmptyBatch(t *testing.T) {
	r := &WhatsAppReminderRelay{url: "ws://unused", token: "t"}
	statuses, err := r.SendMessages(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, statuses, "an empty batch must not dial the service")
}

func TestSendMessagesDialFailure(t *testing.T) {
	r := &WhatsAppReminderRelay{url: "ws://127.0.0.1:1", token: "t"}
	_, err := r.SendMessages(context.Background(), []relay.Message{
		{Phone: "+5491100000001", Text: "recordatorio"},
	})
	assert.Error(t, err)
}
