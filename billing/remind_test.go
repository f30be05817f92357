package billing_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"aqua/billing"
	dbt "aqua/db/db"
)

func TestReminderTargets(t *testing.T) {
	unpaidWithPhone := dbt.Member{ID: uuid.New(), Name: "Ana", Phone: "+5491100000001"}
	unpaidNoPhone := dbt.Member{ID: uuid.New(), Name: "Beto"}
	paidWithPhone := dbt.Member{ID: uuid.New(), Name: "Carla", Phone: "+5491100000002", HasPaid: true}

	targets := billing.ReminderTargets([]dbt.Member{unpaidWithPhone, unpaidNoPhone, paidWithPhone})

	assert.Len(t, targets, 1)
	assert.Equal(t, unpaidWithPhone.ID, targets[0].ID)
}

func TestReminderTargetsEmptyRoster(t *testing.T) {
	assert.Empty(t, billing.ReminderTargets(nil))
}

func TestReminderMessage(t *testing.T) {
	msg := billing.ReminderMessage("Mayo de 2026", 200, "https://agua.example.com")
	assert.Contains(t, msg, "Mayo de 2026")
	assert.Contains(t, msg, "$200")
	assert.Contains(t, msg, "https://agua.example.com")
}
