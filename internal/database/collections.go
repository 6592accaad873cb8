package database

import (
	"context"
	"fmt"
	"time"

	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionSearchFields are matched by the collection search.
var CollectionSearchFields = []string{"species"}

// CollectionStore persists harvest events. Records are insert-only.
type CollectionStore struct {
	coll *mongo.Collection
}

func NewCollectionStore(db *mongo.Database) *CollectionStore {
	return &CollectionStore{coll: db.Collection(CollectionsCollection)}
}

func (s *CollectionStore) Create(ctx context.Context, c *models.CollectionRecord) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	result, err := s.coll.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// ListByCollector returns the owner's records, newest first.
func (s *CollectionStore) ListByCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.CollectionRecord, error) {
	items := []models.CollectionRecord{}
	err := findAll(ctx, s.coll, bson.M{"collectorId": collectorID}, &items)
	return items, err
}

// List returns every record matching f, newest first.
func (s *CollectionStore) List(ctx context.Context, f search.Filter) ([]models.CollectionRecord, error) {
	items := []models.CollectionRecord{}
	err := findAll(ctx, s.coll, f.BSON(), &items)
	return items, err
}

func (s *CollectionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.CollectionRecord, error) {
	var c models.CollectionRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err, "collection")
	}
	return &c, nil
}
