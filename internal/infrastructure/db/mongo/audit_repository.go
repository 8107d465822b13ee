package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/closedigit/bookstore-api/internal/core/domain"
)

const collectionAudit = "audit_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAudit)}
}

// Insert appends an event to the audit_events collection.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"action":      string(event.Action),
		"entity":      event.Entity,
		"entity_id":   event.EntityID,
		"actor_id":    event.ActorID,
		"actor":       event.Actor,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if len(event.Details) > 0 {
		doc["details"] = event.Details
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	return err
}
