package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidWorkshop = errors.New("invalid_workshop")
	ErrInvalidName     = errors.New("invalid_key_name")
	ErrKeyNotFound     = errors.New("api_key_not_found")
	ErrKeyRevoked      = errors.New("api_key_revoked")
	ErrInvalidToken    = errors.New("invalid_token")
)

// APIKey authenticates machine callers on behalf of a workshop. Only the
// argon2id digest of the secret is stored; the full token is shown once
// at creation.
type APIKey struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	WorkshopID snowflake.ID `gorm:"not null;index"`

	Name       string `gorm:"type:text;not null"`
	Prefix     string `gorm:"type:text;not null"`
	SecretHash string `gorm:"type:text;not null"`

	IsActive   bool       `gorm:"not null;default:true;index"`
	ExpiresAt  *time.Time `gorm:"index"`
	LastUsedAt *time.Time

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (APIKey) TableName() string { return "api_keys" }

// Expired reports whether the key's expiry has passed.
func (k APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}
