// Package migrations contains embedded SQL migration files for database schema management,
// one directory per supported driver.
package migrations

import "embed"

// Files exposes the compiled-in migration SQL files.
//
//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS
