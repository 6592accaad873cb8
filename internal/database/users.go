package database

import (
	"context"
	"fmt"
	"time"

	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserSearchFields are matched by the admin user search.
var UserSearchFields = []string{"email", "name"}

// UserStore persists accounts in the "users" collection.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(UsersCollection)}
}

// Create inserts u and fills its ID and timestamps. A registered email
// yields errs.ErrConflict.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{"email": u.Email})
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("email %q: %w", u.Email, errs.ErrConflict)
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	result, err := s.coll.InsertOne(ctx, u)
	if err != nil {
		// lost a race against a concurrent signup; the unique index decides
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("email %q: %w", u.Email, errs.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err, "user")
	}
	return &u, nil
}

// List returns users matching f, newest first, without password hashes.
func (s *UserStore) List(ctx context.Context, f search.Filter) ([]models.User, error) {
	users := []models.User{}
	err := findAll(ctx, s.coll, f.BSON(), &users, options.Find().SetProjection(bson.M{"hashedPassword": 0}))
	return users, err
}
