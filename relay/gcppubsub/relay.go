package gcppubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"

	"aqua/relay/relay"
)

const phoneAttribute = "phone"

// PubSubReminderRelay implements relay.ReminderRelay on a GCP Pub/Sub
// topic. Each reminder is one message carrying the phone number as an
// attribute; a downstream subscriber owns actual delivery.
type PubSubReminderRelay struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubReminderRelay ensures the reminder topic exists, creating
// it if necessary.
func NewPubSubReminderRelay(ctx context.Context, client *pubsub.Client, topicID string) (*PubSubReminderRelay, error) {
	if client == nil {
		return nil, fmt.Errorf("GCP Pub/Sub client is nil")
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existence of topic %s: %w", topicID, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicID, err)
		}
		log.Printf("Created Pub/Sub topic: %s", topicID)
	}

	return &PubSubReminderRelay{client: client, topic: topic}, nil
}

// SendMessages publishes every reminder and waits for each publish
// confirmation, collecting one status per message.
func (r *PubSubReminderRelay) SendMessages(ctx context.Context, msgs []relay.Message) ([]relay.Status, error) {
	statuses := make([]relay.Status, 0, len(msgs))
	for _, msg := range msgs {
		body, err := json.Marshal(msg)
		if err != nil {
			statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: false, Error: err.Error()})
			continue
		}
		result := r.topic.Publish(ctx, &pubsub.Message{
			Data: body,
			Attributes: map[string]string{
				phoneAttribute: msg.Phone,
			},
		})
		if _, err := result.Get(ctx); err != nil {
			statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: false, Error: err.Error()})
			continue
		}
		statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: true})
	}
	return statuses, nil
}

// Stop flushes and stops the underlying topic publisher.
func (r *PubSubReminderRelay) Stop() {
	r.topic.Stop()
}

var _ relay.ReminderRelay = (*PubSubReminderRelay)(nil)
