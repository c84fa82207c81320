// Package model defines the core domain types for reconciliation.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Status represents the reconciliation state of a transaction.
type Status string

// Transaction statuses.
const (
	StatusCleared    Status = "CLEARED"
	StatusFailed     Status = "FAILED"
	StatusRectifying Status = "RECTIFYING"
	StatusRectified  Status = "RECTIFIED"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusCleared, StatusFailed, StatusRectifying, StatusRectified:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown transaction status: %q", s)
	}
	return status, nil
}

// Transaction represents a single payment record under reconciliation.
// All fields except Status are immutable once the record is created.
type Transaction struct {
	Date          time.Time
	ID            string
	VendorName    string
	VendorEmail   string
	InvoiceID     string
	Currency      string // ISO 4217 code
	Status        Status
	FailureReason string // Populated only when Status is FAILED
	Hash          string
	Amount        float64
}

// GenerateHash creates a unique hash for duplicate detection during ingestion.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.VendorName,
		t.InvoiceID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
