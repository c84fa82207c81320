package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// AppendAuditEntry writes one entry to the append-only audit log. The
// referenced transaction must exist; the foreign key enforces it.
func (s *SQLiteStorage) AppendAuditEntry(ctx context.Context, entry *model.AuditLogEntry) error {
	if err := validateAuditEntry(entry); err != nil {
		return err
	}

	var metadata any
	if len(entry.Metadata) > 0 {
		data, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode audit metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.execContext(ctx, `
		INSERT INTO audit_log (id, transaction_id, timestamp, role, action, details, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.TransactionID, entry.Timestamp, string(entry.Role),
		entry.Action, entry.Details, metadata)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for %s: %w", entry.TransactionID, err)
	}

	return nil
}

// GetAuditEntries retrieves all entries for a transaction, newest
// first. Ties on timestamp fall back to insertion order.
func (s *SQLiteStorage) GetAuditEntries(ctx context.Context, transactionID string) ([]model.AuditLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	return s.queryAuditEntries(ctx, `
		SELECT id, transaction_id, timestamp, role, action, details, metadata
		FROM audit_log WHERE transaction_id = ?
		ORDER BY timestamp DESC, seq DESC`, transactionID)
}

// ListAuditEntries retrieves the most recent entries across all
// transactions.
func (s *SQLiteStorage) ListAuditEntries(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	return s.queryAuditEntries(ctx, `
		SELECT id, transaction_id, timestamp, role, action, details, metadata
		FROM audit_log
		ORDER BY timestamp DESC, seq DESC LIMIT ?`, limit)
}

func (s *SQLiteStorage) queryAuditEntries(ctx context.Context, query string, args ...any) ([]model.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.AuditLogEntry
	for rows.Next() {
		var entry model.AuditLogEntry
		var role string
		var details, metadata sql.NullString

		if err := rows.Scan(&entry.ID, &entry.TransactionID, &entry.Timestamp,
			&role, &entry.Action, &details, &metadata); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		parsed, err := model.ParseRole(role)
		if err != nil {
			return nil, err
		}
		entry.Role = parsed
		entry.Details = details.String

		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode audit metadata: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading audit log: %w", err)
	}

	return entries, nil
}
