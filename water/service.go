package water

import (
	"strings"
	"time"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"

	"aqua/apperror"
	"aqua/auth"
	"aqua/blob/blob"
	dbt "aqua/db/db"
	"aqua/libs/diff"
	"aqua/relay/relay"
)

// Service orchestrates the cooperative's operations over the storage,
// blob and relay boundaries. Admin-only operations take the caller's
// session explicitly; there is no ambient identity.
type Service struct {
	db     dbt.WaterDBWrapper
	blob   blob.Store
	relay  relay.ReminderRelay
	differ *odiff.Differ

	appLink string
	now     func() time.Time
}

// NewService wires a Service. appLink is interpolated into reminder
// messages.
func NewService(db dbt.WaterDBWrapper, store blob.Store, reminderRelay relay.ReminderRelay, appLink string) *Service {
	return &Service{
		db:      db,
		blob:    store,
		relay:   reminderRelay,
		differ:  diff.GetCustomDiffer(),
		appLink: appLink,
		now:     time.Now,
	}
}

// WithClock replaces the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func requireAdmin(sess *auth.Session) error {
	if sess == nil || !sess.Admin {
		return apperror.Unauthorized("admin session required")
	}
	return nil
}

// wrapDBError turns a storage error into the taxonomy the web layer
// maps to HTTP statuses. Lookup misses become NotFound, everything
// else is a persistence failure.
func wrapDBError(err error, message string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "no payment") {
		return apperror.NotFound("%s: %v", message, err)
	}
	return apperror.Persistence(message, err)
}

// GetConfig returns the billing configuration singleton.
func (s *Service) GetConfig() (*dbt.Config, error) {
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	return config, nil
}

// ConfigUpdate carries a partial configuration edit; nil fields keep
// their stored value.
type ConfigUpdate struct {
	BottlePrice     *float64
	BottleCount     *int
	CurrentMonth    *string
	IsMonthActive   *bool
	IsAmountUpdated *bool
}

// UpdateConfig applies a partial edit to the config singleton. Admin only.
func (s *Service) UpdateConfig(sess *auth.Session, update ConfigUpdate) (*dbt.Config, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	if update.BottlePrice != nil {
		if *update.BottlePrice < 0 {
			return nil, apperror.Invalid("bottle price must not be negative")
		}
		config.BottlePrice = *update.BottlePrice
	}
	if update.BottleCount != nil {
		if *update.BottleCount < 0 {
			return nil, apperror.Invalid("bottle count must not be negative")
		}
		config.BottleCount = *update.BottleCount
	}
	if update.CurrentMonth != nil {
		config.CurrentMonth = *update.CurrentMonth
	}
	if update.IsMonthActive != nil {
		config.IsMonthActive = *update.IsMonthActive
	}
	if update.IsAmountUpdated != nil {
		config.IsAmountUpdated = *update.IsAmountUpdated
	}
	if err := s.db.UpdateConfig(config); err != nil {
		return nil, wrapDBError(err, "failed to update config")
	}
	return config, nil
}

// ToggleAmountUpdated flips the admin acknowledgement that the bottle
// figures are current. Admin only.
func (s *Service) ToggleAmountUpdated(sess *auth.Session) (*dbt.Config, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	config, err := s.db.GetConfig()
	if err != nil {
		return nil, wrapDBError(err, "failed to load config")
	}
	config.IsAmountUpdated = !config.IsAmountUpdated
	if err := s.db.UpdateConfig(config); err != nil {
		return nil, wrapDBError(err, "failed to update config")
	}
	return config, nil
}

// ListMembers returns the whole roster with payment histories.
func (s *Service) ListMembers() ([]dbt.Member, error) {
	members, err := s.db.ListMembers()
	if err != nil {
		return nil, wrapDBError(err, "failed to list members")
	}
	return members, nil
}

// GetMember returns one member with its payment history.
func (s *Service) GetMember(id uuid.UUID) (*dbt.Member, error) {
	member, err := s.db.GetMember(id)
	if err != nil {
		return nil, wrapDBError(err, "failed to load member")
	}
	return member, nil
}

// MemberParams are the roster fields an admin edits directly.
type MemberParams struct {
	Name   string
	Avatar string
	Phone  string
}

// AddMember creates a roster entry. New members start unpaid with a
// clean balance; their first due arrives with the next rollover or a
// recorded payment. Admin only.
func (s *Service) AddMember(sess *auth.Session, params MemberParams) (*dbt.Member, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, apperror.Invalid("member name is required")
	}
	member := &dbt.Member{
		ID:     uuid.New(),
		Name:   params.Name,
		Avatar: params.Avatar,
		Phone:  params.Phone,
	}
	if err := s.db.CreateMember(member); err != nil {
		return nil, wrapDBError(err, "failed to create member")
	}
	return member, nil
}

// UpdateMember edits the roster fields of a member. Balances and the
// payment log are owned by the payment and rollover operations. Admin only.
func (s *Service) UpdateMember(sess *auth.Session, id uuid.UUID, params MemberParams) (*dbt.Member, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	member, err := s.db.GetMember(id)
	if err != nil {
		return nil, wrapDBError(err, "failed to load member")
	}
	if params.Name != "" {
		member.Name = params.Name
	}
	member.Avatar = params.Avatar
	member.Phone = params.Phone
	if err := s.db.UpdateMember(member); err != nil {
		return nil, wrapDBError(err, "failed to update member")
	}
	return member, nil
}

// RemoveMember deletes a member and discards its payment history.
// Admin only, irreversible.
func (s *Service) RemoveMember(sess *auth.Session, id uuid.UUID) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.db.DeleteMember(id); err != nil {
		return wrapDBError(err, "failed to delete member")
	}
	return nil
}
