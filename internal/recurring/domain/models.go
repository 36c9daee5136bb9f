package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	billingdomain "github.com/wrenchworks/torqbill/internal/billing/domain"
)

// Frequency is the cadence a profile generates bills on.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ProfileStatus is the lifecycle state of a recurring profile.
type ProfileStatus string

const (
	ProfileStatusActive  ProfileStatus = "active"
	ProfileStatusStopped ProfileStatus = "stopped"
	ProfileStatusExpired ProfileStatus = "expired"
)

// Profile is a template that generates bills on a schedule.
type Profile struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	WorkshopID     snowflake.ID `gorm:"not null;index"`
	CounterpartyID snowflake.ID `gorm:"not null;index"`

	Name      string    `gorm:"type:text;not null"`
	Frequency Frequency `gorm:"type:text;not null"`
	// RepeatEvery spaces occurrences: every N weeks, months or years.
	RepeatEvery int `gorm:"not null;default:1"`

	StartDate    time.Time  `gorm:"not null"`
	EndDate      *time.Time `gorm:"index"`
	NeverExpires bool       `gorm:"not null;default:false"`

	NextBillDate   time.Time `gorm:"not null;index"`
	BillsGenerated int64     `gorm:"not null;default:0"`

	Status ProfileStatus `gorm:"type:text;not null;index"`

	Currency      string                       `gorm:"type:text;not null;default:'INR'"`
	DiscountType  billingdomain.DiscountType   `gorm:"type:text;not null;default:'flat'"`
	DiscountValue decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	TDSApplicable bool                         `gorm:"not null;default:false"`
	TDSRate       decimal.Decimal              `gorm:"type:decimal(10,4);not null;default:0"`

	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	LineItems []ProfileLineItem `gorm:"foreignKey:ProfileID"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "recurring_profiles" }

// ProfileLineItem is a template row copied onto every generated bill.
type ProfileLineItem struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	ProfileID snowflake.ID `gorm:"not null;index"`

	Name        string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	HSNSACCode  string `gorm:"column:hsn_sac_code;type:text"`
	Unit        string `gorm:"type:text"`

	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ProfileLineItem) TableName() string { return "recurring_profile_items" }

// Run marks one generation per profile and date. The unique index makes
// generation idempotent across concurrent workers.
type Run struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	ProfileID  snowflake.ID `gorm:"not null;uniqueIndex:ux_recurring_runs_profile_date,priority:1"`
	RunDate    time.Time    `gorm:"not null;uniqueIndex:ux_recurring_runs_profile_date,priority:2"`
	DocumentID snowflake.ID `gorm:"not null;index"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Run) TableName() string { return "recurring_runs" }
