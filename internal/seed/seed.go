package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	defaultWorkshopName = "Main Workshop"
	defaultWorkshopSlug = "main"
)

// EnsureDefaultWorkshop seeds the default workshop row for single-tenant
// bootstrap. Existing rows are left untouched.
func EnsureDefaultWorkshop(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.WithContext(ctx).
			Raw(`SELECT COUNT(1) FROM workshops WHERE slug = ?`, defaultWorkshopSlug).
			Scan(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Exec(`
			INSERT INTO workshops (id, name, slug, is_default, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			node.Generate().Int64(), defaultWorkshopName, defaultWorkshopSlug, true, now, now,
		).Error
	})
}
