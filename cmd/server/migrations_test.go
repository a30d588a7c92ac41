package main

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/postgres/migrations"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "embedded migrations must not be empty")

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		assert.False(t, entry.IsDir())
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"),
			"only .sql files may be embedded: %s", entry.Name())
		names = append(names, entry.Name())
	}

	// Goose applies migrations in lexical order; the timestamped prefixes
	// must already be sorted so the schema builds deterministically.
	assert.True(t, sort.StringsAreSorted(names), "migration files out of order: %v", names)

	joined := strings.Join(names, " ")
	for _, table := range []string{"users", "tasks", "task_history", "notifications"} {
		assert.Contains(t, joined, table, "missing migration for %s table", table)
	}
}

func TestRunMigrationsUnknownCommand(t *testing.T) {
	err := runMigrations(testConfig(), "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration command")
}

func TestSlogGooseLogger(t *testing.T) {
	t.Parallel()

	// Fatalf must not exit the process; both methods only forward to slog.
	logger := &slogGooseLogger{}
	logger.Printf("applied %d migrations", 4)
	logger.Fatalf("migration %s failed", "20250903141512")
}
