package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/domain"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/platform/logger"
	"github.com/Siddhantji/IMTS-Task-Backend-sub001/internal/store"
	"github.com/google/uuid"
)

// PostgresHistoryStore implements the store.HistoryStore interface
// using a PostgreSQL database as the storage backend. The structured payloads
// of an entry (changes, metadata, transfer and status blocks) live in JSONB
// columns; the log itself is append-only and the store exposes no update or
// delete path.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the HistoryStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure PostgresHistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// Append implements store.HistoryStore.Append
// It validates the entry and writes it to the log.
// Returns store.ErrTaskNotFound if the referenced task does not exist.
// Returns store.ErrUserNotFound if the acting user does not exist.
// Returns validation errors from the domain HistoryEntry if data is invalid.
func (s *PostgresHistoryStore) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("history entry validation failed during append",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	changesJSON, metadataJSON, transferJSON, statusChangeJSON, err := marshalHistoryPayloads(entry)
	if err != nil {
		log.Error("failed to encode history entry payloads",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO task_history (id, task_id, action, performed_by, performed_at,
			changes, metadata, transfer_details, status_change)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.TaskID,
		entry.Action,
		entry.PerformedBy,
		entry.PerformedAt,
		changesJSON,
		metadataJSON,
		transferJSON,
		statusChangeJSON,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			if strings.Contains(constraintName(err), "task_id") {
				log.Warn("unknown task during history append",
					slog.String("entry_id", entry.ID.String()),
					slog.String("task_id", entry.TaskID.String()))
				return store.ErrTaskNotFound
			}
			log.Warn("unknown actor during history append",
				slog.String("entry_id", entry.ID.String()),
				slog.String("performed_by", entry.PerformedBy.String()))
			return store.ErrUserNotFound
		}

		log.Error("failed to append history entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return MapError(err)
	}

	log.Debug("history entry appended",
		slog.String("entry_id", entry.ID.String()),
		slog.String("task_id", entry.TaskID.String()),
		slog.String("action", string(entry.Action)))
	return nil
}

// GetByID implements store.HistoryStore.GetByID
// It retrieves a history entry by its unique ID.
// Returns store.ErrHistoryNotFound if the entry does not exist.
func (s *PostgresHistoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.HistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, task_id, action, performed_by, performed_at,
			changes, metadata, transfer_details, status_change
		FROM task_history
		WHERE id = $1
	`

	entry, err := scanHistoryEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("history entry not found", slog.String("entry_id", id.String()))
			return nil, store.ErrHistoryNotFound
		}
		log.Error("failed to get history entry by ID",
			slog.String("error", err.Error()),
			slog.String("entry_id", id.String()))
		return nil, MapError(err)
	}

	return entry, nil
}

// ListByTask implements store.HistoryStore.ListByTask
// It retrieves up to limit entries for the given task, newest first.
func (s *PostgresHistoryStore) ListByTask(ctx context.Context, taskID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, task_id, action, performed_by, performed_at,
			changes, metadata, transfer_details, status_change
		FROM task_history
		WHERE task_id = $1
		ORDER BY performed_at DESC
		LIMIT $2
	`
	return s.listEntries(ctx, query, taskID, normalizeHistoryLimit(limit))
}

// ListByActor implements store.HistoryStore.ListByActor
// It retrieves up to limit entries performed by the given user, newest first.
func (s *PostgresHistoryStore) ListByActor(ctx context.Context, userID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	query := `
		SELECT id, task_id, action, performed_by, performed_at,
			changes, metadata, transfer_details, status_change
		FROM task_history
		WHERE performed_by = $1
		ORDER BY performed_at DESC
		LIMIT $2
	`
	return s.listEntries(ctx, query, userID, normalizeHistoryLimit(limit))
}

// WithTx implements store.HistoryStore.WithTx
// It returns a new store instance running its queries on the given transaction.
func (s *PostgresHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &PostgresHistoryStore{
		db:     tx,
		logger: s.logger,
	}
}

// listEntries runs a history query and scans the resulting rows.
func (s *PostgresHistoryStore) listEntries(ctx context.Context, query string, args ...any) ([]domain.HistoryEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query history entries",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			log.Error("failed to scan history row",
				slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning history rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}

// normalizeHistoryLimit applies the default limit for zero or negative values.
func normalizeHistoryLimit(limit int) int {
	if limit <= 0 {
		return store.DefaultHistoryLimit
	}
	return limit
}

// marshalHistoryPayloads encodes an entry's structured payloads for storage.
// Changes and metadata always encode to a JSON document so the NOT NULL
// columns hold '[]' and '{}' instead of SQL nulls; the optional transfer and
// status blocks stay NULL when absent.
func marshalHistoryPayloads(entry *domain.HistoryEntry) (changes, metadata, transfer, statusChange []byte, err error) {
	changesSrc := entry.Changes
	if changesSrc == nil {
		changesSrc = []domain.Change{}
	}
	changes, err = json.Marshal(changesSrc)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode changes: %w", err)
	}

	metadataSrc := entry.Metadata
	if metadataSrc == nil {
		metadataSrc = map[string]string{}
	}
	metadata, err = json.Marshal(metadataSrc)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	if entry.TransferDetails != nil {
		transfer, err = json.Marshal(entry.TransferDetails)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode transfer details: %w", err)
		}
	}

	if entry.StatusChange != nil {
		statusChange, err = json.Marshal(entry.StatusChange)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to encode status change: %w", err)
		}
	}

	return changes, metadata, transfer, statusChange, nil
}

// scanHistoryEntry reads one history row, decoding the JSONB payloads. The
// caller handles sql.ErrNoRows.
func scanHistoryEntry(row rowScanner) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var action string
	var changesJSON, metadataJSON, transferJSON, statusChangeJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&action,
		&entry.PerformedBy,
		&entry.PerformedAt,
		&changesJSON,
		&metadataJSON,
		&transferJSON,
		&statusChangeJSON,
	)
	if err != nil {
		return nil, err
	}

	entry.Action = domain.Action(action)

	if len(changesJSON) > 0 {
		if err := json.Unmarshal(changesJSON, &entry.Changes); err != nil {
			return nil, fmt.Errorf("failed to decode changes: %w", err)
		}
	}
	if len(entry.Changes) == 0 {
		entry.Changes = nil
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	if len(entry.Metadata) == 0 {
		entry.Metadata = nil
	}

	if len(transferJSON) > 0 {
		entry.TransferDetails = &domain.TransferDetails{}
		if err := json.Unmarshal(transferJSON, entry.TransferDetails); err != nil {
			return nil, fmt.Errorf("failed to decode transfer details: %w", err)
		}
	}

	if len(statusChangeJSON) > 0 {
		entry.StatusChange = &domain.StatusChange{}
		if err := json.Unmarshal(statusChangeJSON, entry.StatusChange); err != nil {
			return nil, fmt.Errorf("failed to decode status change: %w", err)
		}
	}

	return &entry, nil
}
