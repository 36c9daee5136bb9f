package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Kind distinguishes vendors (bills, purchase orders) from customers.
type Kind string

const (
	KindVendor   Kind = "vendor"
	KindCustomer Kind = "customer"
)

// Counterparty is a vendor or customer a document is raised against.
type Counterparty struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	WorkshopID snowflake.ID `gorm:"not null;index"`
	Kind       Kind         `gorm:"type:text;not null;index"`

	Name  string `gorm:"type:text;not null"`
	Email string `gorm:"type:text"`
	Phone string `gorm:"type:text"`
	GSTIN string `gorm:"type:text"`

	BillingAddress string            `gorm:"type:text"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Counterparty) TableName() string { return "counterparties" }
