// Package migration ships the schema as embedded SQL applied at startup.
package migration

import "embed"

const migrationsDir = "migrations"

//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS
