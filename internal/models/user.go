package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User matches the document in the "users" collection.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashedPassword" json:"-"` // never serialized
	Name           string             `bson:"name" json:"name"`
	Role           Role               `bson:"role" json:"role"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
