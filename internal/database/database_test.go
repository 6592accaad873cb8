package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"aayur-gram-api-server/config"
	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		u := &models.User{Email: "neem@example.com", Name: "Neem", Role: models.RoleCollector, HashedPassword: "h"}
		require.NoError(mt, s.Create(ctx, u))
		assert.False(mt, u.ID.IsZero())
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create existing email is a conflict", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}))

		err := s.Create(ctx, &models.User{Email: "dup@example.com"})
		assert.True(mt, errors.Is(err, errs.ErrConflict), "got %v", err)
	})

	mt.Run("duplicate key on insert is a conflict", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		err := s.Create(ctx, &models.User{Email: "race@example.com"})
		assert.True(mt, errors.Is(err, errs.ErrConflict), "got %v", err)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "lab@example.com"},
			{Key: "name", Value: "Lab"},
			{Key: "role", Value: "lab"},
			{Key: "hashedPassword", Value: "h"},
		}))

		u, err := s.FindByEmail(ctx, "lab@example.com")
		require.NoError(mt, err)
		assert.Equal(mt, oid, u.ID)
		assert.Equal(mt, models.RoleLab, u.Role)
		assert.Equal(mt, "h", u.HashedPassword)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := s.FindByID(ctx, primitive.NewObjectID())
		assert.True(mt, errors.Is(err, errs.ErrNotFound), "got %v", err)
	})

	mt.Run("list", func(mt *mtest.T) {
		s := &UserStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "b@example.com"}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "email", Value: "a@example.com"}},
		))

		users, err := s.List(ctx, search.Build("example", UserSearchFields...))
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "b@example.com", users[0].Email)
	})
}

func TestCollectionStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		s := &CollectionStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		c := &models.CollectionRecord{CollectorID: primitive.NewObjectID(), Species: "Neem", QuantityKg: 5.5}
		require.NoError(mt, s.Create(ctx, c))
		assert.False(mt, c.ID.IsZero())
	})

	mt.Run("list by collector empty", func(mt *mtest.T) {
		s := &CollectionStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		items, err := s.ListByCollector(ctx, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("find by id", func(mt *mtest.T) {
		s := &CollectionStore{coll: mt.Coll}
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "species", Value: "Tulsi"},
			{Key: "quantityKg", Value: 2.25},
			{Key: "location", Value: bson.D{{Key: "lat", Value: 12.9}, {Key: "lng", Value: 77.6}}},
		}))

		c, err := s.FindByID(ctx, oid)
		require.NoError(mt, err)
		assert.Equal(mt, "Tulsi", c.Species)
		require.NotNil(mt, c.Location)
		assert.Equal(mt, 77.6, c.Location.Lng)
	})
}

func TestLabRecordStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create defaults status", func(mt *mtest.T) {
		s := &LabRecordStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		r := &models.LabRecord{BatchID: "B-1", TechnicianID: "t"}
		require.NoError(mt, s.Create(ctx, r))
		assert.Equal(mt, models.LabStatusPending, r.Status)
		assert.False(mt, r.ID.IsZero())
	})

	mt.Run("update missing is not found", func(mt *mtest.T) {
		s := &LabRecordStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.Update(ctx, primitive.NewObjectID(), models.LabRecordUpdate{BatchID: "B-1"})
		assert.True(mt, errors.Is(err, errs.ErrNotFound), "got %v", err)
	})

	mt.Run("update returns new version", func(mt *mtest.T) {
		s := &LabRecordStore{coll: mt.Coll}
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "batchId", Value: "B-2"},
			{Key: "status", Value: "pass"},
		}}))

		r, err := s.Update(ctx, oid, models.LabRecordUpdate{BatchID: "B-2", Status: models.LabStatusPass})
		require.NoError(mt, err)
		assert.Equal(mt, "B-2", r.BatchID)
		assert.Equal(mt, models.LabStatusPass, r.Status)
	})

	mt.Run("add attachment", func(mt *mtest.T) {
		s := &LabRecordStore{coll: mt.Coll}
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: oid},
			{Key: "attachments", Value: bson.A{bson.D{{Key: "id", Value: "f1"}, {Key: "url", Value: "https://cdn/x.pdf"}}}},
		}}))

		r, err := s.AddAttachment(ctx, oid, models.MediaPointer{ID: "f1", URL: "https://cdn/x.pdf"})
		require.NoError(mt, err)
		require.Len(mt, r.Attachments, 1)
		assert.Equal(mt, "https://cdn/x.pdf", r.Attachments[0].URL)
	})

	mt.Run("list by technician", func(mt *mtest.T) {
		s := &LabRecordStore{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "technicianId", Value: "tech"}},
		))

		items, err := s.ListByTechnician(ctx, "tech", search.Build("#abc123", LabRecordSearchFields...))
		require.NoError(mt, err)
		require.Len(mt, items, 1)
		assert.Equal(mt, "tech", items[0].TechnicianID)
	})
}

func TestLabUpdateDoc(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cid := primitive.NewObjectID()
	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	full := labUpdateDoc(models.LabRecordUpdate{
		BatchID:      "B-9",
		CollectionID: &cid,
		TechnicianID: "tech-2",
		TestDate:     &date,
		Status:       models.LabStatusFail,
		TestParameters: models.TestParameters{
			Moisture: "8%",
		},
	}, now)
	set := full["$set"].(bson.M)
	assert.Equal(t, cid, set["collectionId"])
	assert.Equal(t, date, set["testDate"])
	assert.Equal(t, "tech-2", set["technicianId"])
	assert.Equal(t, models.LabStatusFail, set["status"])
	assert.Equal(t, "8%", set["moisture"])
	assert.Equal(t, now, set["updatedAt"])
	assert.NotContains(t, full, "$unset")

	bare := labUpdateDoc(models.LabRecordUpdate{BatchID: "B-9"}, now)
	set = bare["$set"].(bson.M)
	assert.Equal(t, models.LabStatusPending, set["status"])
	assert.NotContains(t, set, "technicianId", "technician kept when not supplied")
	unset := bare["$unset"].(bson.M)
	assert.Contains(t, unset, "collectionId")
	assert.Contains(t, unset, "testDate")
}

func TestSeedAdmin(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	seed := config.SeedConfig{AdminEmail: "root@example.com", AdminPassword: "pw", AdminName: "Root"}

	mt.Run("missing settings", func(mt *mtest.T) {
		err := SeedAdmin(ctx, &UserStore{coll: mt.Coll}, config.SeedConfig{}, bcrypt.MinCost, zap.NewNop())
		assert.True(mt, errors.Is(err, errs.ErrInvalidInput))
	})

	mt.Run("existing admin is skipped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "root@example.com"},
			{Key: "role", Value: "admin"},
		}))
		require.NoError(mt, SeedAdmin(ctx, &UserStore{coll: mt.Coll}, seed, bcrypt.MinCost, zap.NewNop()))
	})

	mt.Run("creates admin", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch), // FindOne
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch), // CountDocuments
			mtest.CreateSuccessResponse(),                           // InsertOne
		)
		require.NoError(mt, SeedAdmin(ctx, &UserStore{coll: mt.Coll}, seed, bcrypt.MinCost, zap.NewNop()))
	})
}
