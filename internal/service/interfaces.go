// Package service defines the interfaces shared across the application.
package service

import (
	"context"
	"time"

	"github.com/mosaicfin/reconpilot/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	Status *model.Status
	Limit  int
	Offset int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status model.Status) error

	// Audit log operations. The log is append-only: there is no update
	// or delete.
	AppendAuditEntry(ctx context.Context, entry *model.AuditLogEntry) error
	GetAuditEntries(ctx context.Context, transactionID string) ([]model.AuditLogEntry, error)
	ListAuditEntries(ctx context.Context, limit int) ([]model.AuditLogEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Scheduler abstracts delays so that timing-sensitive code can be
// tested with a zero-delay implementation.
type Scheduler interface {
	// Sleep blocks for d or until the context is canceled.
	Sleep(ctx context.Context, d time.Duration) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
