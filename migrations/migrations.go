// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds every migration file, named for golang-migrate.
//
//go:embed *.sql
var FS embed.FS
