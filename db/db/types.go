package db

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one entry in a member's append-only payment history.
// Entries are immutable once written except for the Receipt reference,
// and at most one entry per (member, month) may be deleted by an admin.
type Payment struct {
	ID     uuid.UUID
	Date   time.Time
	Amount int64
	// Month is the billing-period label the payment is credited
	// against. It need not match the period it was created in.
	Month       string
	BottleCount int
	Receipt     string
	// AdminEditedAmount is set when an admin registered the payment
	// manually (cash). It records the entered amount for audit display.
	AdminEditedAmount *int64
}

// Member is one roster entry of the cooperative.
type Member struct {
	ID     uuid.UUID
	Name   string
	Avatar string
	Phone  string
	// HasPaid is true when the member has covered the active period.
	HasPaid bool
	// Receipt mirrors the most recently uploaded proof, independent of
	// the history entries.
	Receipt          string
	LastPaymentMonth string
	// PendingAmount is the outstanding debt, current period included.
	PendingAmount int64
	// CreditAmount is overpaid money held against future dues. Never
	// positive at the same time as PendingAmount after reconciliation.
	CreditAmount   int64
	PaymentHistory []Payment
}

// Config is the singleton billing configuration row.
type Config struct {
	BottlePrice     float64
	BottleCount     int
	CurrentMonth    string
	IsMonthActive   bool
	IsAmountUpdated bool
	// RolloverVersion increments on every applied rollover. A staged
	// rollover plan carries the version it was computed from so a
	// concurrent or re-run rollover is rejected instead of reapplied.
	RolloverVersion int64
}

// MemberUpdate is one staged per-member outcome of a rollover plan.
type MemberUpdate struct {
	ID            uuid.UUID
	HasPaid       bool
	PendingAmount int64
	CreditAmount  int64
}

// RolloverPlan is the staged, all-at-once transition to a new billing
// period: the new config state plus every member's carry-forward.
type RolloverPlan struct {
	NewMonth        string
	ExpectedVersion int64
	Members         []MemberUpdate
}
