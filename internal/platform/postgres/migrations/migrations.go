// Package migrations embeds the goose SQL migrations that define the
// Postgres schema: users, tasks, task assignees, the append-only task
// history log, and notifications with the reminder dedup index.
package migrations

import "embed"

// FS holds the embedded migration files, applied by cmd/server via goose.
//
//go:embed *.sql
var FS embed.FS
