// Package gymsplit embeds the SQL migrations shared by the gymsplit binaries.
package gymsplit

import "embed"

// PostgresMigrations holds the golang-migrate files for the Postgres store.
//
//go:embed migrations/postgres/*.sql
var PostgresMigrations embed.FS

// SQLiteMigrations holds the golang-migrate files for the SQLite store.
//
//go:embed migrations/sqlite/*.sql
var SQLiteMigrations embed.FS
