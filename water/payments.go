package water

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"aqua/apperror"
	"aqua/auth"
	"aqua/billing"
	dbt "aqua/db/db"
)

// receiptObjectName builds the stored name for an uploaded receipt,
// keeping the original extension behind a fresh UUID.
func receiptObjectName(suggestedName string) string {
	ext := strings.ToLower(path.Ext(suggestedName))
	return uuid.New().String() + ext
}

func hasMonthPayment(history []dbt.Payment, month string) bool {
	for _, payment := range history {
		if payment.Month == month {
			return true
		}
	}
	return false
}

// applyPayment appends the payment and reconciles the member's
// balance against the amount actually credited.
func (s *Service) applyPayment(member *dbt.Member, config *dbt.Config, payment dbt.Payment, memberCount int) error {
	if err := s.db.AppendPayment(member.ID, payment); err != nil {
		return wrapDBError(err, "failed to append payment")
	}

	due := billing.Due(config.BottlePrice, config.BottleCount, memberCount)
	balance := billing.Reconcile(
		billing.Balance{Pending: member.PendingAmount, Credit: member.CreditAmount},
		payment.Amount, due)

	member.PendingAmount = balance.Pending
	member.CreditAmount = balance.Credit
	member.LastPaymentMonth = payment.Month
	member.PaymentHistory = append(member.PaymentHistory, payment)
	member.HasPaid = balance.Pending == 0 && hasMonthPayment(member.PaymentHistory, config.CurrentMonth)
	if payment.Receipt != "" {
		member.Receipt = payment.Receipt
	}

	if err := s.db.UpdateMember(member); err != nil {
		return wrapDBError(err, "failed to update member after payment")
	}
	return nil
}

// RecordReceiptPayment registers a payment backed by an uploaded
// proof. The credited amount is the regular due unless an admin
// supplies an override.
func (s *Service) RecordReceiptPayment(ctx context.Context, sess *auth.Session, memberID uuid.UUID, fileName string, fileData []byte, amountOverride *int64) (*dbt.Payment, error) {
	if amountOverride != nil {
		if err := requireAdmin(sess); err != nil {
			return nil, err
		}
		if *amountOverride <= 0 {
			return nil, apperror.Invalid("amount override must be positive")
		}
	}
	if len(fileData) == 0 {
		return nil, apperror.Invalid("a receipt file is required")
	}

	member, err := s.db.GetMember(memberID)
	if err != nil {
		return nil, wrapDBError(err, "failed to load member")
	}
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	members, err := s.db.ListMembers()
	if err != nil {
		return nil, wrapDBError(err, "failed to list members")
	}

	receiptURL, err := s.blob.Upload(ctx, receiptObjectName(fileName), fileData)
	if err != nil {
		return nil, apperror.UploadFailed(err)
	}

	amount := billing.Due(config.BottlePrice, config.BottleCount, len(members))
	if amountOverride != nil {
		amount = *amountOverride
	}
	payment := dbt.Payment{
		ID:          uuid.New(),
		Date:        s.now(),
		Amount:      amount,
		Month:       config.CurrentMonth,
		BottleCount: config.BottleCount,
		Receipt:     receiptURL,
	}

	if err := s.applyPayment(member, config, payment, len(members)); err != nil {
		return nil, err
	}
	return &payment, nil
}

// RecordCashPayment registers a payment handed over in cash. The
// entered amount is credited as-is and kept on the record as the
// admin's override for audit display. Admin only.
func (s *Service) RecordCashPayment(sess *auth.Session, memberID uuid.UUID, amount int64, targetMonth string) (*dbt.Payment, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperror.Invalid("cash amount must be positive")
	}

	member, err := s.db.GetMember(memberID)
	if err != nil {
		return nil, wrapDBError(err, "failed to load member")
	}
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	members, err := s.db.ListMembers()
	if err != nil {
		return nil, wrapDBError(err, "failed to list members")
	}

	month := targetMonth
	if month == "" {
		month = config.CurrentMonth
	}
	edited := amount
	payment := dbt.Payment{
		ID:                uuid.New(),
		Date:              s.now(),
		Amount:            amount,
		Month:             month,
		BottleCount:       config.BottleCount,
		AdminEditedAmount: &edited,
	}

	if err := s.applyPayment(member, config, payment, len(members)); err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateReceipt replaces the proof of the one history entry matching
// month, leaving date, amount and month untouched, and mirrors the new
// URL onto the member row.
func (s *Service) UpdateReceipt(ctx context.Context, sess *auth.Session, memberID uuid.UUID, month string, fileName string, fileData []byte) (string, error) {
	if len(fileData) == 0 {
		return "", apperror.Invalid("a receipt file is required")
	}

	member, err := s.db.GetMember(memberID)
	if err != nil {
		return "", wrapDBError(err, "failed to load member")
	}
	if !hasMonthPayment(member.PaymentHistory, month) {
		return "", apperror.NotFound("no payment for month %q on member %s", month, memberID)
	}

	receiptURL, err := s.blob.Upload(ctx, receiptObjectName(fileName), fileData)
	if err != nil {
		return "", apperror.UploadFailed(err)
	}

	if err := s.db.UpdatePaymentReceipt(memberID, month, receiptURL); err != nil {
		return "", wrapDBError(err, "failed to update receipt")
	}
	member.Receipt = receiptURL
	if err := s.db.UpdateMember(member); err != nil {
		return "", wrapDBError(err, "failed to mirror receipt onto member")
	}
	return receiptURL, nil
}

// DeletePayment removes the history entry matching month. Deleting the
// active month's payment resets the member to unpaid with the full
// current due outstanding. Admin only, irreversible.
func (s *Service) DeletePayment(sess *auth.Session, memberID uuid.UUID, month string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}

	member, err := s.db.GetMember(memberID)
	if err != nil {
		return wrapDBError(err, "failed to load member")
	}
	config, err := s.db.GetConfig()
	if err != nil {
		return wrapDBError(err, "failed to load config")
	}
	members, err := s.db.ListMembers()
	if err != nil {
		return wrapDBError(err, "failed to list members")
	}

	if err := s.db.DeletePayment(memberID, month); err != nil {
		return wrapDBError(err, fmt.Sprintf("failed to delete payment for month %q", month))
	}

	if month == config.CurrentMonth {
		member.HasPaid = false
		member.LastPaymentMonth = ""
		member.PendingAmount = billing.Due(config.BottlePrice, config.BottleCount, len(members))
		member.CreditAmount = 0
		if err := s.db.UpdateMember(member); err != nil {
			return wrapDBError(err, "failed to update member after payment deletion")
		}
	}
	return nil
}
