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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LabRecordSearchFields are matched by the lab record search.
var LabRecordSearchFields = []string{"batchId"}

// LabRecordStore persists quality-test results.
type LabRecordStore struct {
	coll *mongo.Collection
}

func NewLabRecordStore(db *mongo.Database) *LabRecordStore {
	return &LabRecordStore{coll: db.Collection(LabRecordsCollection)}
}

func (s *LabRecordStore) Create(ctx context.Context, r *models.LabRecord) error {
	now := time.Now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	if r.Status == "" {
		r.Status = models.LabStatusPending
	}

	result, err := s.coll.InsertOne(ctx, r)
	if err != nil {
		return fmt.Errorf("insert lab record: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

// Update replaces the mutable fields of record id and returns the new
// version. There is no version check: the last writer wins.
func (s *LabRecordStore) Update(ctx context.Context, id primitive.ObjectID, u models.LabRecordUpdate) (*models.LabRecord, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)

	var r models.LabRecord
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, labUpdateDoc(u, time.Now().UTC()), opts).Decode(&r)
	if err != nil {
		return nil, notFound(err, "lab record")
	}
	return &r, nil
}

// AddAttachment appends a stored file to record id.
func (s *LabRecordStore) AddAttachment(ctx context.Context, id primitive.ObjectID, m models.MediaPointer) (*models.LabRecord, error) {
	update := bson.M{
		"$push": bson.M{"attachments": m},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var r models.LabRecord
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&r); err != nil {
		return nil, notFound(err, "lab record")
	}
	return &r, nil
}

// List returns every record matching f, newest first.
func (s *LabRecordStore) List(ctx context.Context, f search.Filter) ([]models.LabRecord, error) {
	items := []models.LabRecord{}
	err := findAll(ctx, s.coll, f.BSON(), &items)
	return items, err
}

// ListByTechnician narrows List to one technician's records.
func (s *LabRecordStore) ListByTechnician(ctx context.Context, technicianID string, f search.Filter) ([]models.LabRecord, error) {
	items := []models.LabRecord{}
	err := findAll(ctx, s.coll, f.And(bson.M{"technicianId": technicianID}), &items)
	return items, err
}

func (s *LabRecordStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.LabRecord, error) {
	var r models.LabRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, notFound(err, "lab record")
	}
	return &r, nil
}

// labUpdateDoc builds the full-replace update: absent optional references
// are unset, the technician is kept unless a new one is given.
func labUpdateDoc(u models.LabRecordUpdate, now time.Time) bson.M {
	status := u.Status
	if status == "" {
		status = models.LabStatusPending
	}
	set := bson.M{
		"batchId":         u.BatchID,
		"status":          status,
		"notes":           u.Notes,
		"moisture":        u.TestParameters.Moisture,
		"ashContent":      u.TestParameters.AshContent,
		"pesticideLevel":  u.TestParameters.PesticideLevel,
		"microbialLoad":   u.TestParameters.MicrobialLoad,
		"activeCompounds": u.TestParameters.ActiveCompounds,
		"report":          u.Report,
		"updatedAt":       now,
	}
	unset := bson.M{}

	if u.CollectionID != nil {
		set["collectionId"] = *u.CollectionID
	} else {
		unset["collectionId"] = ""
	}
	if u.TestDate != nil {
		set["testDate"] = *u.TestDate
	} else {
		unset["testDate"] = ""
	}
	if u.TechnicianID != "" {
		set["technicianId"] = u.TechnicianID
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}
