package model

import (
	"fmt"
	"time"
)

// Role identifies which agent produced an audit log entry.
type Role string

// Agent roles.
const (
	RoleAuditor    Role = "AUDITOR"
	RoleLiaison    Role = "LIAISON"
	RoleController Role = "CONTROLLER"
	RoleSystem     Role = "SYSTEM"
)

// Valid reports whether the role is one of the known agent roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAuditor, RoleLiaison, RoleController, RoleSystem:
		return true
	default:
		return false
	}
}

// ParseRole converts a string to a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("unknown agent role: %q", s)
	}
	return role, nil
}

// AuditLogEntry records one action taken by a human or automated agent
// against a transaction. Entries are append-only: once written they are
// never mutated or removed.
type AuditLogEntry struct {
	Timestamp     time.Time
	Metadata      map[string]string // Optional payload (full analysis text, email body, ...)
	ID            string
	TransactionID string
	Action        string
	Details       string
	Role          Role
}
