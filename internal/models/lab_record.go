package models

import (
	"fmt"
	"strings"
	"time"

	"aayur-gram-api-server/internal/errs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LabStatus is the outcome of a quality test.
type LabStatus string

const (
	LabStatusPending LabStatus = "pending"
	LabStatusPass    LabStatus = "pass"
	LabStatusFail    LabStatus = "fail"
)

// ParseLabStatus defaults an empty status to pending and rejects unknown values.
func ParseLabStatus(s string) (LabStatus, error) {
	switch LabStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", LabStatusPending:
		return LabStatusPending, nil
	case LabStatusPass:
		return LabStatusPass, nil
	case LabStatusFail:
		return LabStatusFail, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", errs.ErrInvalidInput, s)
}

// TestParameters holds the named lab measurements, recorded as free text.
type TestParameters struct {
	Moisture        string `bson:"moisture" json:"moisture"`
	AshContent      string `bson:"ashContent" json:"ashContent"`
	PesticideLevel  string `bson:"pesticideLevel" json:"pesticideLevel"`
	MicrobialLoad   string `bson:"microbialLoad" json:"microbialLoad"`
	ActiveCompounds string `bson:"activeCompounds" json:"activeCompounds"`
}

// LabRecord is one quality-test event, optionally linked to a CollectionRecord.
type LabRecord struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	BatchID        string              `bson:"batchId" json:"batchId"`
	CollectionID   *primitive.ObjectID `bson:"collectionId,omitempty" json:"collectionId,omitempty"`
	TechnicianID   string              `bson:"technicianId" json:"technicianId"`
	TestDate       *time.Time          `bson:"testDate,omitempty" json:"testDate,omitempty"`
	Status         LabStatus           `bson:"status" json:"status"`
	Notes          string              `bson:"notes" json:"notes"`
	TestParameters `bson:",inline"`
	Report         string         `bson:"report" json:"report"`
	Attachments    []MediaPointer `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// LabRecordUpdate carries the mutable fields of a LabRecord. Applying it
// replaces all of them; TechnicianID is only replaced when non-empty.
type LabRecordUpdate struct {
	BatchID        string
	CollectionID   *primitive.ObjectID
	TechnicianID   string
	TestDate       *time.Time
	Status         LabStatus
	Notes          string
	TestParameters TestParameters
	Report         string
}
