package water

import (
	"errors"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"

	"aqua/apperror"
	"aqua/auth"
	"aqua/billing"
	dbt "aqua/db/db"
)

// RolloverEntry is the reported outcome for one member.
type RolloverEntry struct {
	MemberID      uuid.UUID       `json:"memberId"`
	Name          string          `json:"name"`
	HasPaid       bool            `json:"hasPaid"`
	PendingAmount int64           `json:"pendingAmount"`
	CreditAmount  int64           `json:"creditAmount"`
	Changes       odiff.Changelog `json:"changes"`
}

// RolloverReport describes an applied month transition.
type RolloverReport struct {
	PreviousMonth string          `json:"previousMonth"`
	NewMonth      string          `json:"newMonth"`
	Due           int64           `json:"due"`
	Entries       []RolloverEntry `json:"entries"`
}

// balanceView is the diffed slice of member state in rollover reports.
type balanceView struct {
	HasPaid       bool
	PendingAmount int64
	CreditAmount  int64
}

// StartNewMonth closes the active period and opens the next one. The
// whole transition is staged first and applied as one batched write;
// a concurrent rollover loses the version race and is rejected rather
// than double-applied. Admin only.
func (s *Service) StartNewMonth(sess *auth.Session) (*RolloverReport, error) {
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

	newMonth := billing.MonthLabel(s.now())
	plan := billing.PlanRollover(config, members, newMonth)
	if err := s.db.ApplyRollover(plan); err != nil {
		if errors.Is(err, dbt.ErrRolloverConflict) {
			return nil, apperror.Invalid("another rollover already advanced the month; reload and retry")
		}
		return nil, wrapDBError(err, "failed to apply rollover")
	}

	report := &RolloverReport{
		PreviousMonth: config.CurrentMonth,
		NewMonth:      newMonth,
		Due:           billing.Due(config.BottlePrice, config.BottleCount, len(members)),
		Entries:       make([]RolloverEntry, 0, len(members)),
	}
	updatesByID := make(map[uuid.UUID]dbt.MemberUpdate, len(plan.Members))
	for _, update := range plan.Members {
		updatesByID[update.ID] = update
	}
	for _, member := range members {
		update := updatesByID[member.ID]
		before := balanceView{HasPaid: member.HasPaid, PendingAmount: member.PendingAmount, CreditAmount: member.CreditAmount}
		after := balanceView{HasPaid: update.HasPaid, PendingAmount: update.PendingAmount, CreditAmount: update.CreditAmount}
		changes, diffErr := s.differ.Diff(before, after)
		if diffErr != nil {
			changes = nil
		}
		report.Entries = append(report.Entries, RolloverEntry{
			MemberID:      member.ID,
			Name:          member.Name,
			HasPaid:       update.HasPaid,
			PendingAmount: update.PendingAmount,
			CreditAmount:  update.CreditAmount,
			Changes:       changes,
		})
	}
	return report, nil
}
