package water

import (
	"context"

	"aqua/auth"
	"aqua/billing"
	"aqua/relay/relay"
)

// SendReminders relays a payment reminder to every unpaid member with
// a phone number. It returns one status per recipient; failed numbers
// never abort the batch and nothing is retried here. Admin only.
func (s *Service) SendReminders(ctx context.Context, sess *auth.Session) ([]relay.Status, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	members, err := s.db.ListMembers()
	if err != nil {
		return nil, wrapDBError(err, "failed to list members")
	}

	targets := billing.ReminderTargets(members)
	if len(targets) == 0 {
		return nil, nil
	}

	due := billing.Due(config.BottlePrice, config.BottleCount, len(members))
	text := billing.ReminderMessage(config.CurrentMonth, due, s.appLink)
	msgs := make([]relay.Message, 0, len(targets))
	for _, target := range targets {
		msgs = append(msgs, relay.Message{Phone: target.Phone, Text: text})
	}
	return s.relay.SendMessages(ctx, msgs)
}
