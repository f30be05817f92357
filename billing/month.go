package billing

import (
	"fmt"
	"time"
)

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthLabel formats t as the billing-period label used across the
// system, e.g. "Mayo de 2026".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", spanishMonths[t.Month()-1], t.Year())
}
