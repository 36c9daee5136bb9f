package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service writes balanced ledger entries. CreateEntryTx participates in the
// caller's transaction so postings commit atomically with the document
// mutation that caused them.
type Service interface {
	CreateEntry(
		ctx context.Context,
		workshopID snowflake.ID,
		sourceType string,
		sourceID snowflake.ID,
		currency string,
		occurredAt time.Time,
		lines []EntryLine,
	) error

	CreateEntryTx(
		ctx context.Context,
		tx *gorm.DB,
		workshopID snowflake.ID,
		sourceType string,
		sourceID snowflake.ID,
		currency string,
		occurredAt time.Time,
		lines []EntryLine,
	) error

	// EnsureAccount returns the account id for a chart-of-accounts code,
	// creating the account when missing.
	EnsureAccount(ctx context.Context, tx *gorm.DB, workshopID snowflake.ID, code, name string) (snowflake.ID, error)
}

var (
	ErrInvalidWorkshop      = errors.New("invalid_workshop")
	ErrInvalidSourceType    = errors.New("invalid_source_type")
	ErrInvalidSourceID      = errors.New("invalid_source_id")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidOccurredAt    = errors.New("invalid_occurred_at")
	ErrInvalidEntryLines    = errors.New("invalid_entry_lines")
	ErrInvalidLineAmount    = errors.New("invalid_line_amount")
	ErrInvalidLineDirection = errors.New("invalid_line_direction")
	ErrInvalidAccount       = errors.New("invalid_account")
	ErrUnbalancedEntry      = errors.New("unbalanced_entry")
)
