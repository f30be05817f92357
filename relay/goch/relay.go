package goch

import (
	"context"
	"errors"

	"aqua/relay/relay"
)

// ErrQueueFull is returned per message when the channel buffer cannot
// accept another reminder.
var ErrQueueFull = errors.New("reminder channel is full")

// ChannelReminderRelay implements relay.ReminderRelay using a Go
// channel. It is the in-process backend used in dev mode and tests.
type ChannelReminderRelay struct {
	channel chan relay.Message
}

// NewChannelReminderRelay creates a new instance of ChannelReminderRelay.
// bufferSize determines the capacity of the channel. A bufferSize of 0 means unbuffered.
func NewChannelReminderRelay(bufferSize int) *ChannelReminderRelay {
	if bufferSize > 0 {
		return &ChannelReminderRelay{channel: make(chan relay.Message, bufferSize)}
	}
	return &ChannelReminderRelay{channel: make(chan relay.Message)}
}

// SendMessages pushes every message onto the channel without blocking.
// A full channel marks that message failed and moves on.
func (r *ChannelReminderRelay) SendMessages(_ context.Context, msgs []relay.Message) ([]relay.Status, error) {
	statuses := make([]relay.Status, 0, len(msgs))
	for _, msg := range msgs {
		select {
		case r.channel <- msg:
			statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: true})
		default:
			statuses = append(statuses, relay.Status{Phone: msg.Phone, OK: false, Error: ErrQueueFull.Error()})
		}
	}
	return statuses, nil
}

// Sent returns the receive side of the channel, for consumers and
// test assertions.
func (r *ChannelReminderRelay) Sent() <-chan relay.Message {
	return r.channel
}

var _ relay.ReminderRelay = (*ChannelReminderRelay)(nil)
