package water

import "aqua/billing"

// Stats is the dashboard summary of the active period.
type Stats struct {
	CurrentMonth   string `json:"currentMonth"`
	MemberCount    int    `json:"memberCount"`
	PaidCount      int    `json:"paidCount"`
	UnpaidCount    int    `json:"unpaidCount"`
	Due            int64  `json:"due"`
	TotalCollected int64  `json:"totalCollected"`
	PendingTotal   int64  `json:"pendingTotal"`
	CreditTotal    int64  `json:"creditTotal"`
}

// GetStats summarizes the active period over the whole roster.
func (s *Service) GetStats() (*Stats, error) {
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	members, err := s.db.ListMembers()
	if err != nil {
		return nil, wrapDBError(err, "failed to list members")
	}

	stats := &Stats{
		CurrentMonth: config.CurrentMonth,
		MemberCount:  len(members),
		Due:          billing.Due(config.BottlePrice, config.BottleCount, len(members)),
	}
	for _, member := range members {
		if member.HasPaid {
			stats.PaidCount++
		} else {
			stats.UnpaidCount++
		}
		stats.PendingTotal += member.PendingAmount
		stats.CreditTotal += member.CreditAmount
		for _, payment := range member.PaymentHistory {
			if payment.Month == config.CurrentMonth {
				stats.TotalCollected += payment.Amount
			}
		}
	}
	return stats, nil
}
