package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service records audit trail entries for billing actions.
type Service interface {
	AuditLog(
		ctx context.Context,
		workshopID *snowflake.ID,
		actor string,
		action string,
		targetType string,
		targetID *string,
		metadata map[string]any,
	) error
}
