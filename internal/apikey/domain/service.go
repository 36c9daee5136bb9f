package domain

import (
	"context"
	"time"
)

// CreatedKey carries the one-time plaintext token alongside the record.
type CreatedKey struct {
	Key   APIKey `json:"key"`
	Token string `json:"token"`
}

type Service interface {
	// Create mints a key and returns its full token exactly once.
	Create(ctx context.Context, workshopID, name string, expiresAt *time.Time) (CreatedKey, error)
	List(ctx context.Context, workshopID string) ([]APIKey, error)
	Revoke(ctx context.Context, workshopID, id string) error

	// Authenticate resolves a bearer token to its key, verifying the
	// argon2id digest and the key's active window.
	Authenticate(ctx context.Context, token string) (*APIKey, error)
}
