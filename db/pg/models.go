package pg

import (
	"time"

	"github.com/google/uuid"
)

// The wire casing is snake_case throughout; GORM's default naming
// derives every column from the field name, so the mapping between
// these models and the camelCase domain types stays total in both
// directions.

type PersonModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name             string    `gorm:"size:255;not null"`
	Avatar           string    `gorm:"size:1024"`
	Phone            string    `gorm:"size:32"`
	HasPaid          bool      `gorm:"not null"`
	Receipt          string    `gorm:"size:1024"`
	LastPaymentMonth string    `gorm:"size:64"`
	PendingAmount    int64     `gorm:"not null"`
	CreditAmount     int64     `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for PersonModel.
func (PersonModel) TableName() string {
	return "people"
}

// PaymentModel is one row of the append-only payment log. Seq is a
// bigserial assigned by the database; reading in Seq order reproduces
// insertion order.
type PaymentModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	PersonID          uuid.UUID `gorm:"type:uuid;not null"`
	Seq               int64     `gorm:"->"`
	Date              time.Time `gorm:"not null"`
	Amount            int64     `gorm:"not null"`
	Month             string    `gorm:"size:64;not null"`
	BottleCount       int       `gorm:"not null"`
	Receipt           string    `gorm:"size:1024"`
	AdminEditedAmount *int64
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for PaymentModel.
func (PaymentModel) TableName() string {
	return "payments"
}

type WaterConfigModel struct {
	ID              int     `gorm:"primaryKey"`
	BottlePrice     float64 `gorm:"type:numeric(10,2);not null"`
	BottleCount     int     `gorm:"not null"`
	CurrentMonth    string  `gorm:"size:64"`
	IsMonthActive   bool    `gorm:"not null"`
	IsAmountUpdated bool    `gorm:"not null"`
	RolloverVersion int64   `gorm:"not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for WaterConfigModel.
func (WaterConfigModel) TableName() string {
	return "water_config"
}

// configRowID is the fixed primary key of the singleton config row.
const configRowID = 1
