package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// EntryDirection represents debit or credit postings.
type EntryDirection string

const (
	EntryDirectionDebit  EntryDirection = "debit"
	EntryDirectionCredit EntryDirection = "credit"
)

const (
	SourceTypeBillOpened    = "bill_opened"
	SourceTypeBillVoided    = "bill_voided"
	SourceTypePayment       = "payment"
	SourceTypeRecurringBill = "recurring_bill"
	SourceTypeAdjustment    = "adjustment"
)

const (
	AccountCodeCash            = "cash"
	AccountCodeAccountsPayable = "accounts_payable"
	AccountCodeExpense         = "expense"
	AccountCodeInputTax        = "input_tax"
	AccountCodeTDSPayable      = "tds_payable"
)

// Account defines a chart-of-accounts entry.
type Account struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	WorkshopID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_ledger_accounts_workshop_code,priority:1"`
	Code       string       `gorm:"type:text;not null;uniqueIndex:ux_ledger_accounts_workshop_code,priority:2"`
	Name       string       `gorm:"type:text;not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "ledger_accounts" }

// Entry captures the immutable header for a financial event.
type Entry struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	WorkshopID snowflake.ID `gorm:"not null;index"`
	SourceType string       `gorm:"type:text;not null;index"`
	SourceID   snowflake.ID `gorm:"not null;index"`
	Currency   string       `gorm:"type:text;not null"`
	OccurredAt time.Time    `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "ledger_entries" }

// EntryLine is a double-entry posting line.
type EntryLine struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	LedgerEntryID snowflake.ID    `gorm:"not null;index"`
	AccountID     snowflake.ID    `gorm:"not null;index"`
	Direction     EntryDirection  `gorm:"type:text;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EntryLine) TableName() string { return "ledger_entry_lines" }
