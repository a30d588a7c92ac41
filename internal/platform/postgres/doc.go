// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It handles query
// execution, mapping between domain entities and database rows, and the
// translation of driver errors into the store package's sentinel errors.
//
// The append-only task history and the derived notifications keep their
// structured payloads in JSONB columns; reminder deduplication is enforced
// here through a partial unique index rather than in application code.
package postgres
