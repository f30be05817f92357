package billing

import (
	dbt "aqua/db/db"
)

// RollForward computes one member's carry into a new billing period.
// Held credit is applied before the new due: when it covers the due
// the member starts the period already settled and keeps the
// remainder. Otherwise the uncovered part of the due becomes pending,
// stacked on top of the old pending only for members who did not pay
// the closing period, and all credit is consumed.
func RollForward(member dbt.Member, due int64) Balance {
	if member.CreditAmount >= due {
		return Balance{Pending: 0, Credit: member.CreditAmount - due}
	}
	carried := int64(0)
	if !member.HasPaid {
		carried = member.PendingAmount
	}
	return Balance{Pending: carried + due - member.CreditAmount, Credit: 0}
}

// PlanRollover stages the full transition to newMonth: the new config
// state and every member's recomputed balance. Nothing is written; the
// caller applies the plan as one batched write. The plan remembers the
// config version it was computed from so a stale plan is rejected
// instead of double-applying the carry-forward.
func PlanRollover(config *dbt.Config, members []dbt.Member, newMonth string) *dbt.RolloverPlan {
	due := Due(config.BottlePrice, config.BottleCount, len(members))
	plan := &dbt.RolloverPlan{
		NewMonth:        newMonth,
		ExpectedVersion: config.RolloverVersion,
		Members:         make([]dbt.MemberUpdate, 0, len(members)),
	}
	for _, member := range members {
		balance := RollForward(member, due)
		plan.Members = append(plan.Members, dbt.MemberUpdate{
			ID:            member.ID,
			HasPaid:       balance.Pending == 0,
			PendingAmount: balance.Pending,
			CreditAmount:  balance.Credit,
		})
	}
	return plan
}
