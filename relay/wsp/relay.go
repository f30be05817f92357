package wsp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"aqua/relay/relay"
)

// The WhatsApp socket service accepts reminder batches through a
// single websocket exchange: one "registermessage" frame per chunk of
// at most 100 messages, answered by a status frame.
const (
	registerOp     = "registermessage"
	chunkSize      = 100
	responseWindow = 30 * time.Second
)

type registerFrame struct {
	Op       string          `json:"op"`
	Token    string          `json:"token"`
	Mensajes []relay.Message `json:"mensajes"`
}

type serviceResponse struct {
	Op     string `json:"op"`
	Status string `json:"status"`
	Estado string `json:"estado,omitempty"`
}

// WhatsAppReminderRelay implements relay.ReminderRelay against the
// external WhatsApp socket service. One dial per batch; the service
// owns retries and actual delivery.
type WhatsAppReminderRelay struct {
	url   string
	token string
}

// NewWhatsAppReminderRelay reads WHATSAPP_WS_URL and WHATSAPP_TOKEN
// from the environment.
func NewWhatsAppReminderRelay() (*WhatsAppReminderRelay, error) {
	url := os.Getenv("WHATSAPP_WS_URL")
	if url == "" {
		return nil, fmt.Errorf("WHATSAPP_WS_URL is not set")
	}
	token := os.Getenv("WHATSAPP_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("WHATSAPP_TOKEN is not set")
	}
	return &WhatsAppReminderRelay{url: url, token: token}, nil
}

// SendMessages relays the batch in chunks of 100. A chunk that the
// service rejects fails only the recipients in that chunk.
func (r *WhatsAppReminderRelay) SendMessages(ctx context.Context, msgs []relay.Message) ([]relay.Status, error) {
	if len(msgs) == 0 {
		return nil, nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial whatsapp service at %s: %w", r.url, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(responseWindow)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to arm read deadline: %w", err)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to arm write deadline: %w", err)
	}

	statuses := make([]relay.Status, 0, len(msgs))
	for start := 0; start < len(msgs); start += chunkSize {
		end := start + chunkSize
		if end > len(msgs) {
			end = len(msgs)
		}
		chunk := msgs[start:end]
		statuses = append(statuses, r.sendChunk(conn, chunk)...)
	}
	return statuses, nil
}

func (r *WhatsAppReminderRelay) sendChunk(conn *websocket.Conn, chunk []relay.Message) []relay.Status {
	frame := registerFrame{Op: registerOp, Token: r.token, Mensajes: chunk}
	if err := conn.WriteJSON(frame); err != nil {
		return chunkFailed(chunk, fmt.Errorf("failed to send chunk: %w", err))
	}

	var resp serviceResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return chunkFailed(chunk, fmt.Errorf("no response from whatsapp service: %w", err))
	}
	if resp.Status != "" && resp.Status != "ok" && resp.Status != "1" {
		return chunkFailed(chunk, fmt.Errorf("whatsapp service rejected chunk: status %s", resp.Status))
	}

	statuses := make([]relay.Status, 0, len(chunk))
	for _, msg := range chunk {
		statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: true})
	}
	return statuses
}

func chunkFailed(chunk []relay.Message, err error) []relay.Status {
	statuses := make([]relay.Status, 0, len(chunk))
	for _, msg := range chunk {
		statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: false, Error: err.Error()})
	}
	return statuses
}

var _ relay.ReminderRelay = (*WhatsAppReminderRelay)(nil)
