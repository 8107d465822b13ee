package ports

import (
	"context"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events without blocking the caller.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
