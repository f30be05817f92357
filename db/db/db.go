package db

import (
	"errors"

	"github.com/google/uuid"
)

// ErrRolloverConflict is returned by ApplyRollover when the plan was
// computed against a config version that is no longer current.
var ErrRolloverConflict = errors.New("rollover plan is stale: config version changed")

// WaterDBWrapper is the storage boundary of the cooperative: the
// config singleton plus the member roster with payment histories.
// On-wire column names are snake_case; implementations own the mapping
// to these camelCase types and must keep it total in both directions.
type WaterDBWrapper interface {
	// Config singleton
	GetConfig() (*Config, error)
	UpdateConfig(config *Config) error

	// Roster
	CreateMember(member *Member) error
	GetMember(id uuid.UUID) (*Member, error)
	ListMembers() ([]Member, error)
	UpdateMember(member *Member) error
	DeleteMember(id uuid.UUID) error

	// Payment history (append-only log owned by its member)
	AppendPayment(memberID uuid.UUID, payment Payment) error
	UpdatePaymentReceipt(memberID uuid.UUID, month string, receipt string) error
	DeletePayment(memberID uuid.UUID, month string) error

	// Rollover applies the staged plan as a single batched write and
	// bumps the config rollover version. Returns ErrRolloverConflict
	// when the plan's expected version does not match the stored one.
	ApplyRollover(plan *RolloverPlan) error
}
