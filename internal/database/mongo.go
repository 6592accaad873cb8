// Package database holds the MongoDB-backed stores for users, collection
// records and lab records.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aayur-gram-api-server/config"
	"aayur-gram-api-server/internal/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection       = "users"
	CollectionsCollection = "collections"
	LabRecordsCollection  = "labrecords"
)

const defaultTimeout = 10 * time.Second

// newestFirst is the sort order of every listing.
var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(timeoutOr(cfg.Timeout)))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeoutOr(cfg.Timeout))
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on; the unique email
// index is what enforces one user per email.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: newestFirst},
		},
		CollectionsCollection: {
			{Keys: bson.D{{Key: "collectorId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: newestFirst},
		},
		LabRecordsCollection: {
			{Keys: bson.D{{Key: "batchId", Value: 1}}},
			{Keys: bson.D{{Key: "technicianId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: newestFirst},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

// notFound maps the driver's empty result to errs.ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", what, errs.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// findAll runs a sorted find and decodes every document into out.
func findAll(ctx context.Context, coll *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	opts = append([]*options.FindOptions{options.Find().SetSort(newestFirst)}, opts...)
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return nil
}
