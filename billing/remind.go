package billing

import (
	"fmt"

	dbt "aqua/db/db"
)

// ReminderTargets selects the members a payment reminder can reach:
// unpaid for the active period and carrying a phone number. Members
// without a phone are never included, regardless of payment state.
func ReminderTargets(members []dbt.Member) []dbt.Member {
	var targets []dbt.Member
	for _, member := range members {
		if !member.HasPaid && member.Phone != "" {
			targets = append(targets, member)
		}
	}
	return targets
}

// ReminderMessage builds the free-text reminder sent to every target.
func ReminderMessage(currentMonth string, amount int64, appLink string) string {
	return fmt.Sprintf(
		"Recordatorio de pago de agua - %s\n\nMonto a pagar: $%d\n\nLink a la aplicación: %s",
		currentMonth, amount, appLink)
}
