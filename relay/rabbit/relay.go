package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"aqua/relay/relay"
)

const (
	exchangeName   = "water_reminder_exchange"
	queueName      = "water_reminder_queue"
	sendRoutingKey = "reminder.send"
	publishTimeout = 5 * time.Second
)

// RabbitReminderRelay implements relay.ReminderRelay by publishing one
// JSON message per recipient. A downstream worker owns delivery; this
// side only reports whether the broker accepted each message.
type RabbitReminderRelay struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewRabbitReminderRelay opens a channel and declares the reminder
// exchange/queue pair.
func NewRabbitReminderRelay(conn *amqp091.Connection) (*RabbitReminderRelay, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := DeclareQueueAndExchange(ch, queueName, exchangeName, sendRoutingKey); err != nil {
		ch.Close()
		return nil, err
	}

	return &RabbitReminderRelay{conn: conn, channel: ch}, nil
}

// SendMessages publishes every reminder, collecting one status per
// message. Broker rejections fail only their own message.
func (r *RabbitReminderRelay) SendMessages(ctx context.Context, msgs []relay.Message) ([]relay.Status, error) {
	statuses := make([]relay.Status, 0, len(msgs))
	for _, msg := range msgs {
		if err := r.publish(ctx, msg); err != nil {
			statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: false, Error: err.Error()})
			continue
		}
		statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: true})
	}
	return statuses, nil
}

func (r *RabbitReminderRelay) publish(ctx context.Context, msg relay.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = r.channel.PublishWithContext(publishCtx,
		exchangeName,   // exchange
		sendRoutingKey, // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// Close releases the channel; the connection is owned by the caller.
func (r *RabbitReminderRelay) Close() error {
	return r.channel.Close()
}

var _ relay.ReminderRelay = (*RabbitReminderRelay)(nil)
