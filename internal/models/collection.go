package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Score bounds for the collector's quality self-assessment.
const (
	MinScore = 0
	MaxScore = 10
)

// CollectionRecord is one harvest event logged by a collector.
// Records are immutable once created.
type CollectionRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CollectorID  primitive.ObjectID `bson:"collectorId" json:"collectorId"`
	Species      string             `bson:"species" json:"species"`
	QuantityKg   float64            `bson:"quantityKg" json:"quantityKg"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Location     *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	Freshness    *float64           `bson:"freshness,omitempty" json:"freshness,omitempty"`
	SizeScore    *float64           `bson:"sizeScore,omitempty" json:"sizeScore,omitempty"`
	QualityNotes string             `bson:"qualityNotes,omitempty" json:"qualityNotes,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
