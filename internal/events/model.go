package events

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OutboxEvent is a stored billing event awaiting delivery.
type OutboxEvent struct {
	ID          snowflake.ID      `gorm:"primaryKey"`
	WorkshopID  snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_billing_events_workshop_dedupe,priority:1"`
	EventType   string            `gorm:"type:text;not null;index"`
	Payload     datatypes.JSONMap `gorm:"type:jsonb"`
	DedupeKey   *string           `gorm:"type:text;uniqueIndex:ux_billing_events_workshop_dedupe,priority:2"`
	Published   bool              `gorm:"not null;default:false;index"`
	PublishedAt *time.Time
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OutboxEvent) TableName() string { return "billing_events" }

// Unpublished returns pending events oldest first.
func (o *Outbox) Unpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var pending []OutboxEvent
	if err := o.db.WithContext(ctx).
		Where("published = ?", false).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

// MarkPublished flags events as delivered.
func (o *Outbox) MarkPublished(ctx context.Context, ids []snowflake.ID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return o.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"published": true, "published_at": now}).Error
}
