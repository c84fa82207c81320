package storage

import (
	"context"
	"fmt"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// validateContext checks that a context is usable.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context must not be nil")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return nil
}

// validateString checks that a required string field is non-empty.
func validateString(value, field string) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", field)
	}
	return nil
}

// validateTransaction checks invariants before a transaction is written.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("transaction must not be nil")
	}
	if err := validateString(txn.ID, "transaction ID"); err != nil {
		return err
	}
	if !txn.Status.Valid() {
		return fmt.Errorf("transaction %s has invalid status %q", txn.ID, txn.Status)
	}
	return nil
}

// validateAuditEntry checks invariants before an entry is appended.
func validateAuditEntry(entry *model.AuditLogEntry) error {
	if entry == nil {
		return fmt.Errorf("audit entry must not be nil")
	}
	if err := validateString(entry.ID, "audit entry ID"); err != nil {
		return err
	}
	if err := validateString(entry.TransactionID, "audit entry transaction ID"); err != nil {
		return err
	}
	if !entry.Role.Valid() {
		return fmt.Errorf("audit entry %s has invalid role %q", entry.ID, entry.Role)
	}
	if err := validateString(entry.Action, "audit entry action"); err != nil {
		return err
	}
	return nil
}
