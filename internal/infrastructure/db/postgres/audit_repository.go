package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

// AuditRepository implements ports.AuditRepository using PostgreSQL.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO audit_events (action, entity, entity_id, actor_id, actor, occurred_at, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var details map[string]string
	if len(event.Details) > 0 {
		details = event.Details
	}
	_, err := r.pool.Exec(ctx, query,
		string(event.Action),
		event.Entity,
		event.EntityID,
		event.ActorID,
		event.Actor,
		event.OccurredAt,
		details,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
