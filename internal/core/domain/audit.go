package domain

import (
	"strconv"
	"time"
)

// AuditAction names a state change recorded in the audit trail.
type AuditAction string

const (
	AuditBookCreated     AuditAction = "book.created"
	AuditBookUpdated     AuditAction = "book.updated"
	AuditBookDeleted     AuditAction = "book.deleted"
	AuditUserRegistered  AuditAction = "user.registered"
	AuditUserRoleChanged AuditAction = "user.role_changed"
	AuditUserDeleted     AuditAction = "user.deleted"
)

// AuditEvent is an append-only record of a successful mutation.
type AuditEvent struct {
	Action     AuditAction
	Entity     string // "book" or "user"
	EntityID   int64
	ActorID    int64 // 0 for self-registration
	Actor      string
	OccurredAt time.Time
	Details    map[string]string
}

// ShardKey groups events so that changes to one entity stay ordered.
func (e AuditEvent) ShardKey() string {
	return e.Entity + ":" + strconv.FormatInt(e.EntityID, 10)
}
