package db

import "embed"

// MigrationFS embeds the SQL migration files applied by the migrate runner.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
