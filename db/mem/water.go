package mem

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	dbt "aqua/db/db"
)

// inMemoryWaterDBWrapper is an in-memory implementation of
// dbt.WaterDBWrapper, used in tests and dev mode.
type inMemoryWaterDBWrapper struct {
	config  *dbt.Config
	members map[uuid.UUID]*dbt.Member

	mu sync.RWMutex
}

// NewInMemoryWaterDBWrapper creates a store seeded with the given
// config. A nil config starts with an empty singleton.
func NewInMemoryWaterDBWrapper(config *dbt.Config) dbt.WaterDBWrapper {
	if config == nil {
		config = &dbt.Config{}
	}
	configCopy := *config
	return &inMemoryWaterDBWrapper{
		config:  &configCopy,
		members: make(map[uuid.UUID]*dbt.Member),
	}
}

func (db *inMemoryWaterDBWrapper) GetConfig() (*dbt.Config, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	configCopy := *db.config
	return &configCopy, nil
}

func (db *inMemoryWaterDBWrapper) UpdateConfig(config *dbt.Config) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	configCopy := *config
	db.config = &configCopy
	return nil
}

func (db *inMemoryWaterDBWrapper) CreateMember(member *dbt.Member) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.members[member.ID]; exists {
		return fmt.Errorf("member with ID %s already exists", member.ID)
	}
	db.members[member.ID] = copyMember(member)
	return nil
}

func (db *inMemoryWaterDBWrapper) GetMember(id uuid.UUID) (*dbt.Member, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	member, exists := db.members[id]
	if !exists {
		return nil, fmt.Errorf("member with ID %s not found", id)
	}
	return copyMember(member), nil
}

func (db *inMemoryWaterDBWrapper) ListMembers() ([]dbt.Member, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	members := make([]dbt.Member, 0, len(db.members))
	for _, member := range db.members {
		members = append(members, *copyMember(member))
	}
	return members, nil
}

func (db *inMemoryWaterDBWrapper) UpdateMember(member *dbt.Member) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, exists := db.members[member.ID]
	if !exists {
		return fmt.Errorf("member with ID %s not found for update", member.ID)
	}
	updated := copyMember(member)
	// History is owned by the append/delete operations, not by row updates.
	updated.PaymentHistory = stored.PaymentHistory
	db.members[member.ID] = updated
	return nil
}

func (db *inMemoryWaterDBWrapper) DeleteMember(id uuid.UUID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.members[id]; !exists {
		return fmt.Errorf("member with ID %s not found for deletion", id)
	}
	delete(db.members, id)
	return nil
}

func (db *inMemoryWaterDBWrapper) AppendPayment(memberID uuid.UUID, payment dbt.Payment) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	member, exists := db.members[memberID]
	if !exists {
		return fmt.Errorf("member with ID %s not found", memberID)
	}
	member.PaymentHistory = append(member.PaymentHistory, payment)
	return nil
}

func (db *inMemoryWaterDBWrapper) UpdatePaymentReceipt(memberID uuid.UUID, month string, receipt string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	member, exists := db.members[memberID]
	if !exists {
		return fmt.Errorf("member with ID %s not found", memberID)
	}
	for i := range member.PaymentHistory {
		if member.PaymentHistory[i].Month == month {
			member.PaymentHistory[i].Receipt = receipt
			return nil
		}
	}
	return fmt.Errorf("no payment for month %q on member %s", month, memberID)
}

func (db *inMemoryWaterDBWrapper) DeletePayment(memberID uuid.UUID, month string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	member, exists := db.members[memberID]
	if !exists {
		return fmt.Errorf("member with ID %s not found", memberID)
	}
	for i := range member.PaymentHistory {
		if member.PaymentHistory[i].Month == month {
			member.PaymentHistory = append(member.PaymentHistory[:i], member.PaymentHistory[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no payment for month %q on member %s", month, memberID)
}

func (db *inMemoryWaterDBWrapper) ApplyRollover(plan *dbt.RolloverPlan) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.config.RolloverVersion != plan.ExpectedVersion {
		return dbt.ErrRolloverConflict
	}
	for _, update := range plan.Members {
		if _, exists := db.members[update.ID]; !exists {
			return fmt.Errorf("member with ID %s not found for rollover", update.ID)
		}
	}

	db.config.CurrentMonth = plan.NewMonth
	db.config.IsMonthActive = true
	db.config.IsAmountUpdated = false
	db.config.RolloverVersion++
	for _, update := range plan.Members {
		member := db.members[update.ID]
		member.HasPaid = update.HasPaid
		member.PendingAmount = update.PendingAmount
		member.CreditAmount = update.CreditAmount
	}
	return nil
}

func copyMember(member *dbt.Member) *dbt.Member {
	memberCopy := *member
	memberCopy.PaymentHistory = make([]dbt.Payment, len(member.PaymentHistory))
	copy(memberCopy.PaymentHistory, member.PaymentHistory)
	return &memberCopy
}
