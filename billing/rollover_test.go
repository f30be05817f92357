package billing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqua/billing"
	dbt "aqua/db/db"
)

func TestRollForward(t *testing.T) {
	tests := []struct {
		name     string
		member   dbt.Member
		due      int64
		expected billing.Balance
	}{
		{
			name:     "Credit covers the due",
			member:   dbt.Member{HasPaid: true, CreditAmount: 150},
			due:      100,
			expected: billing.Balance{Pending: 0, Credit: 50},
		},
		{
			name:     "Credit exactly equals the due",
			member:   dbt.Member{HasPaid: true, CreditAmount: 100},
			due:      100,
			expected: billing.Balance{Pending: 0, Credit: 0},
		},
		{
			name:     "Paid member with partial credit owes the difference",
			member:   dbt.Member{HasPaid: true, CreditAmount: 50},
			due:      100,
			expected: billing.Balance{Pending: 50, Credit: 0},
		},
		{
			name:     "Paid member without credit owes the new due",
			member:   dbt.Member{HasPaid: true},
			due:      100,
			expected: billing.Balance{Pending: 100, Credit: 0},
		},
		{
			name:     "Unpaid member accumulates",
			member:   dbt.Member{HasPaid: false, PendingAmount: 100},
			due:      100,
			expected: billing.Balance{Pending: 200, Credit: 0},
		},
		{
			name:     "Unpaid member with some credit",
			member:   dbt.Member{HasPaid: false, PendingAmount: 100, CreditAmount: 30},
			due:      100,
			expected: billing.Balance{Pending: 170, Credit: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.RollForward(tt.member, tt.due)
			assert.Equal(t, tt.expected, got)
			assert.True(t, got.Pending == 0 || got.Credit == 0,
				"pending and credit must never both be positive after rollover")
		})
	}
}

// The overpayment scenario from end to end: a member pays 150 against
// a due of 100, then the month rolls over with the same due.
func TestOverpaymentThenRollover(t *testing.T) {
	config := &dbt.Config{BottlePrice: 100, BottleCount: 10, CurrentMonth: "Abril de 2026", RolloverVersion: 3}
	members := make([]dbt.Member, 5)
	for i := range members {
		members[i] = dbt.Member{ID: uuid.New()}
	}
	due := billing.Due(config.BottlePrice, config.BottleCount, len(members))
	require.Equal(t, int64(200), due)

	// Member A pays 250 cash against a 200 due.
	balance := billing.Reconcile(billing.Balance{}, 250, due)
	assert.Equal(t, billing.Balance{Pending: 0, Credit: 50}, balance)
	members[0].HasPaid = true
	members[0].CreditAmount = balance.Credit

	plan := billing.PlanRollover(config, members, "Mayo de 2026")
	require.Len(t, plan.Members, 5)
	assert.Equal(t, "Mayo de 2026", plan.NewMonth)
	assert.Equal(t, int64(3), plan.ExpectedVersion)

	// A's credit (50) does not cover the new due (200).
	a := plan.Members[0]
	assert.False(t, a.HasPaid)
	assert.Equal(t, int64(150), a.PendingAmount)
	assert.Equal(t, int64(0), a.CreditAmount)

	// Everyone else starts the period owing the full due.
	for _, update := range plan.Members[1:] {
		assert.False(t, update.HasPaid)
		assert.Equal(t, due, update.PendingAmount)
		assert.Equal(t, int64(0), update.CreditAmount)
	}
}

func TestPlanRolloverCreditCoversDue(t *testing.T) {
	config := &dbt.Config{BottlePrice: 100, BottleCount: 5, CurrentMonth: "Abril de 2026"}
	members := []dbt.Member{
		{ID: uuid.New(), HasPaid: true, CreditAmount: 600},
		{ID: uuid.New()},
		{ID: uuid.New()},
		{ID: uuid.New()},
		{ID: uuid.New()},
	}
	plan := billing.PlanRollover(config, members, "Mayo de 2026")

	// Due is 100; the first member starts the period already settled.
	assert.True(t, plan.Members[0].HasPaid)
	assert.Equal(t, int64(0), plan.Members[0].PendingAmount)
	assert.Equal(t, int64(500), plan.Members[0].CreditAmount)
}
