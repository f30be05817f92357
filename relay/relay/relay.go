package relay

import "context"

// Mode selects the reminder relay backend wired at startup.
type Mode string

const (
	ModeGoChan     Mode = "go_chan"
	ModeRabbitMQ   Mode = "rabbitmq"
	ModeGCPPubSub  Mode = "gcp_pub_sub"
	ModeWhatsAppWS Mode = "whatsapp_ws"
)

// Message is one reminder addressed to a single phone number.
type Message struct {
	Phone string `json:"numero"`
	Text  string `json:"mensaje"`
}

// Status reports the outcome for one message. A failed recipient never
// fails the batch, and the relay performs no retries of its own.
type Status struct {
	Phone string `json:"numero"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ReminderRelay hands reminder messages to an external delivery
// service, best effort, one status per message.
type ReminderRelay interface {
	SendMessages(ctx context.Context, msgs []Message) ([]Status, error)
}
