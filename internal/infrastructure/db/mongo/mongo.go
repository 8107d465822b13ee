package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second

	collectionCounters = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

type counter struct {
	Seq int64 `bson:"seq"`
}

// nextID atomically increments and returns the sequence named name. Mongo has
// no auto-increment, and the API exposes numeric ids.
func nextID(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := db.Collection(collectionCounters).
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).
		Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return c.Seq, nil
}

// duplicateIndex reports whether err is a duplicate-key error raised by the
// unique index named index.
func duplicateIndex(err error, index string) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, index) {
				return true
			}
		}
		return false
	}
	return strings.Contains(err.Error(), index)
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) (bool, error) {
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
