package pg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbt "aqua/db/db"
)

// GORMWaterDBWrapper is a GORM-based PostgreSQL implementation of
// dbt.WaterDBWrapper.
type GORMWaterDBWrapper struct {
	db *gorm.DB
}

// NewGORMWaterDBWrapper creates and returns a new instance of GORMWaterDBWrapper.
func NewGORMWaterDBWrapper(db *gorm.DB) dbt.WaterDBWrapper {
	return &GORMWaterDBWrapper{
		db: db,
	}
}

// GetConfig retrieves the singleton billing configuration row.
func (pgdb *GORMWaterDBWrapper) GetConfig() (*dbt.Config, error) {
	var model WaterConfigModel
	result := pgdb.db.First(&model, "id = ?", configRowID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("water config row not found")
		}
		return nil, fmt.Errorf("failed to get water config: %w", result.Error)
	}
	return configFromModel(&model), nil
}

// UpdateConfig overwrites the singleton billing configuration row.
func (pgdb *GORMWaterDBWrapper) UpdateConfig(config *dbt.Config) error {
	updates := map[string]interface{}{
		"bottle_price":      config.BottlePrice,
		"bottle_count":      config.BottleCount,
		"current_month":     config.CurrentMonth,
		"is_month_active":   config.IsMonthActive,
		"is_amount_updated": config.IsAmountUpdated,
	}
	result := pgdb.db.Model(&WaterConfigModel{}).Where("id = ?", configRowID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update water config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("water config row not found for update")
	}
	return nil
}

// CreateMember creates a new roster entry.
func (pgdb *GORMWaterDBWrapper) CreateMember(member *dbt.Member) error {
	model := personToModel(member)
	result := pgdb.db.Create(model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "duplicate key value violates unique constraint") {
			return fmt.Errorf("member with ID %s already exists: %w", member.ID, result.Error)
		}
		return fmt.Errorf("failed to create member: %w", result.Error)
	}
	return nil
}

// GetMember retrieves one member together with its payment log in
// insertion order.
func (pgdb *GORMWaterDBWrapper) GetMember(id uuid.UUID) (*dbt.Member, error) {
	var personModel PersonModel
	result := pgdb.db.First(&personModel, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("member with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get member %s: %w", id, result.Error)
	}

	var paymentModels []PaymentModel
	result = pgdb.db.Where("person_id = ?", id).Order("seq ASC").Find(&paymentModels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get payments for member %s: %w", id, result.Error)
	}

	member := memberFromModel(&personModel)
	for i := range paymentModels {
		member.PaymentHistory = append(member.PaymentHistory, paymentFromModel(&paymentModels[i]))
	}
	return member, nil
}

// ListMembers retrieves the whole roster with payment logs.
func (pgdb *GORMWaterDBWrapper) ListMembers() ([]dbt.Member, error) {
	var personModels []PersonModel
	result := pgdb.db.Order("created_at ASC").Find(&personModels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list members: %w", result.Error)
	}

	var paymentModels []PaymentModel
	result = pgdb.db.Order("seq ASC").Find(&paymentModels)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list payments: %w", result.Error)
	}
	historyByPerson := make(map[uuid.UUID][]dbt.Payment, len(personModels))
	for i := range paymentModels {
		pm := &paymentModels[i]
		historyByPerson[pm.PersonID] = append(historyByPerson[pm.PersonID], paymentFromModel(pm))
	}

	members := make([]dbt.Member, 0, len(personModels))
	for i := range personModels {
		member := memberFromModel(&personModels[i])
		member.PaymentHistory = historyByPerson[member.ID]
		members = append(members, *member)
	}
	return members, nil
}

// UpdateMember updates a member's row fields. The payment log is owned
// by AppendPayment / UpdatePaymentReceipt / DeletePayment and is not
// touched here.
func (pgdb *GORMWaterDBWrapper) UpdateMember(member *dbt.Member) error {
	updates := map[string]interface{}{
		"name":               member.Name,
		"avatar":             member.Avatar,
		"phone":              member.Phone,
		"has_paid":           member.HasPaid,
		"receipt":            member.Receipt,
		"last_payment_month": member.LastPaymentMonth,
		"pending_amount":     member.PendingAmount,
		"credit_amount":      member.CreditAmount,
	}
	result := pgdb.db.Model(&PersonModel{}).Where("id = ?", member.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update member %s: %w", member.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member with ID %s not found for update", member.ID)
	}
	return nil
}

// DeleteMember deletes a member; the payment log follows through the
// ON DELETE CASCADE constraint.
func (pgdb *GORMWaterDBWrapper) DeleteMember(id uuid.UUID) error {
	result := pgdb.db.Delete(&PersonModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete member %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member with ID %s not found for deletion", id)
	}
	return nil
}

// AppendPayment appends one entry to a member's payment log.
func (pgdb *GORMWaterDBWrapper) AppendPayment(memberID uuid.UUID, payment dbt.Payment) error {
	model := paymentToModel(memberID, &payment)
	result := pgdb.db.Create(model)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "violates foreign key constraint") {
			return fmt.Errorf("member with ID %s not found for payment: %w", memberID, result.Error)
		}
		return fmt.Errorf("failed to append payment for member %s: %w", memberID, result.Error)
	}
	return nil
}

// firstPaymentID selects the earliest log entry matching (member,
// month), so writes touch at most one row even when a month was
// recorded twice.
func (pgdb *GORMWaterDBWrapper) firstPaymentID(memberID uuid.UUID, month string) *gorm.DB {
	return pgdb.db.Model(&PaymentModel{}).
		Select("id").
		Where("person_id = ? AND month = ?", memberID, month).
		Order("seq").
		Limit(1)
}

// UpdatePaymentReceipt replaces the receipt reference of the one log
// entry matching month. All other payment fields stay untouched.
func (pgdb *GORMWaterDBWrapper) UpdatePaymentReceipt(memberID uuid.UUID, month string, receipt string) error {
	result := pgdb.db.Model(&PaymentModel{}).
		Where("id = (?)", pgdb.firstPaymentID(memberID, month)).
		Update("receipt", receipt)
	if result.Error != nil {
		return fmt.Errorf("failed to update receipt for member %s month %q: %w", memberID, month, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no payment for month %q on member %s", month, memberID)
	}
	return nil
}

// DeletePayment removes the log entry matching (member, month). At
// most one entry is removed.
func (pgdb *GORMWaterDBWrapper) DeletePayment(memberID uuid.UUID, month string) error {
	result := pgdb.db.Where("id = (?)", pgdb.firstPaymentID(memberID, month)).Delete(&PaymentModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete payment for member %s month %q: %w", memberID, month, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no payment for month %q on member %s", month, memberID)
	}
	return nil
}

// ApplyRollover applies the staged plan inside one transaction. The
// version guard on the config row rejects a plan computed against a
// superseded state, so an interrupted rollover can be re-planned but
// never double-applied.
func (pgdb *GORMWaterDBWrapper) ApplyRollover(plan *dbt.RolloverPlan) error {
	return pgdb.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&WaterConfigModel{}).
			Where("id = ? AND rollover_version = ?", configRowID, plan.ExpectedVersion).
			Updates(map[string]interface{}{
				"current_month":     plan.NewMonth,
				"is_month_active":   true,
				"is_amount_updated": false,
				"rollover_version":  plan.ExpectedVersion + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to advance config for rollover: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return dbt.ErrRolloverConflict
		}

		for _, update := range plan.Members {
			result := tx.Model(&PersonModel{}).Where("id = ?", update.ID).Updates(map[string]interface{}{
				"has_paid":       update.HasPaid,
				"pending_amount": update.PendingAmount,
				"credit_amount":  update.CreditAmount,
			})
			if result.Error != nil {
				return fmt.Errorf("failed to roll member %s: %w", update.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("member with ID %s not found for rollover", update.ID)
			}
		}
		return nil
	})
}

func configFromModel(model *WaterConfigModel) *dbt.Config {
	return &dbt.Config{
		BottlePrice:     model.BottlePrice,
		BottleCount:     model.BottleCount,
		CurrentMonth:    model.CurrentMonth,
		IsMonthActive:   model.IsMonthActive,
		IsAmountUpdated: model.IsAmountUpdated,
		RolloverVersion: model.RolloverVersion,
	}
}

func memberFromModel(model *PersonModel) *dbt.Member {
	return &dbt.Member{
		ID:               model.ID,
		Name:             model.Name,
		Avatar:           model.Avatar,
		Phone:            model.Phone,
		HasPaid:          model.HasPaid,
		Receipt:          model.Receipt,
		LastPaymentMonth: model.LastPaymentMonth,
		PendingAmount:    model.PendingAmount,
		CreditAmount:     model.CreditAmount,
	}
}

func personToModel(member *dbt.Member) *PersonModel {
	return &PersonModel{
		ID:               member.ID,
		Name:             member.Name,
		Avatar:           member.Avatar,
		Phone:            member.Phone,
		HasPaid:          member.HasPaid,
		Receipt:          member.Receipt,
		LastPaymentMonth: member.LastPaymentMonth,
		PendingAmount:    member.PendingAmount,
		CreditAmount:     member.CreditAmount,
	}
}

func paymentFromModel(model *PaymentModel) dbt.Payment {
	return dbt.Payment{
		ID:                model.ID,
		Date:              model.Date,
		Amount:            model.Amount,
		Month:             model.Month,
		BottleCount:       model.BottleCount,
		Receipt:           model.Receipt,
		AdminEditedAmount: model.AdminEditedAmount,
	}
}

func paymentToModel(memberID uuid.UUID, payment *dbt.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                payment.ID,
		PersonID:          memberID,
		Date:              payment.Date,
		Amount:            payment.Amount,
		Month:             payment.Month,
		BottleCount:       payment.BottleCount,
		Receipt:           payment.Receipt,
		AdminEditedAmount: payment.AdminEditedAmount,
	}
}
