package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of event recorded in the audit log.
type AuditAction string

const (
	AuditRead   AuditAction = "read"
	AuditCreate AuditAction = "create"
	AuditModify AuditAction = "modify"
	AuditDelete AuditAction = "delete"
	AuditExport AuditAction = "export"
)

// AuditEntry is one row of the GDPR Article 30 processing register: every
// read or export of sensitive records and every creation, modification, or
// deletion of sensitive or financial data.
//
// Entries are append-only. ActorID is nil for system actions (webhook
// crediting, retention sweep). The only sanctioned delete is the admin-only
// purge of entries older than a cutoff.
type AuditEntry struct {
	ID          uuid.UUID   `json:"id"`
	At          time.Time   `json:"at"`
	ActorID     *uuid.UUID  `json:"actor_id,omitempty"`
	Action      AuditAction `json:"action"`
	TargetModel string      `json:"target_model"`
	TargetID    string      `json:"target_id,omitempty"`
	TargetRepr  string      `json:"target_repr,omitempty"`
	IPAddress   string      `json:"ip_address,omitempty"`
	UserAgent   string      `json:"user_agent,omitempty"`
	Detail      string      `json:"detail,omitempty"`
}
