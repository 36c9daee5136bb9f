package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DocumentType discriminates payable document kinds.
type DocumentType string

const (
	DocumentTypeBill          DocumentType = "bill"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
)

// DiscountType selects how a document-level discount is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// PaymentMode records how a payment was made.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeCard         PaymentMode = "card"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCheque       PaymentMode = "cheque"
)

// Document is a bill or purchase order raised against a counterparty.
type Document struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	WorkshopID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_documents_workshop_number,priority:1"`
	Type           DocumentType `gorm:"type:text;not null;index"`
	CounterpartyID snowflake.ID `gorm:"not null;index"`
	Number         string       `gorm:"type:text;not null;uniqueIndex:ux_documents_workshop_number,priority:2"`
	Status         Status       `gorm:"type:text;not null"`

	IssueDate    time.Time  `gorm:"not null"`
	DueDate      *time.Time `gorm:"index"`
	OrderDate    *time.Time
	ExpectedDate *time.Time

	Currency string `gorm:"type:text;not null;default:'INR'"`

	DiscountType  DiscountType    `gorm:"type:text;not null;default:'flat'"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TDSApplicable bool            `gorm:"not null;default:false"`
	TDSRate       decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TDSAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	// LinkedBillID is set exactly once when a purchase order is converted.
	LinkedBillID *snowflake.ID `gorm:"index"`
	// SourceProfileID points at the recurring profile that generated a bill.
	SourceProfileID *snowflake.ID `gorm:"index"`

	VoidReason *string           `gorm:"type:text"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`

	LineItems []LineItem `gorm:"foreignKey:DocumentID"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// BalanceDue is the remaining payable amount, never negative.
func (d Document) BalanceDue() decimal.Decimal {
	balance := d.GrandTotal.Sub(d.AmountPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// LineItem is a single priced row on a document.
type LineItem struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	DocumentID snowflake.ID `gorm:"not null;index"`

	Name        string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	HSNSACCode  string `gorm:"column:hsn_sac_code;type:text"`
	Unit        string `gorm:"type:text"`

	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxRate  decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0"`

	Amount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "document_line_items" }

// Payment is an immutable record of money applied to a document.
type Payment struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	WorkshopID snowflake.ID `gorm:"not null;index"`
	DocumentID snowflake.ID `gorm:"not null;index"`

	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Mode            PaymentMode     `gorm:"type:text;not null"`
	ReferenceNumber string          `gorm:"type:text"`
	IdempotencyKey  string          `gorm:"type:text;not null;uniqueIndex"`
	Notes           string          `gorm:"type:text"`

	PaidAt    time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
