// server/internal/models/common.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ShortCodeLength is the number of trailing id characters used as a human-facing label.
const ShortCodeLength = 6

// ShortCode returns the last ShortCodeLength characters of the hex id.
func ShortCode(id primitive.ObjectID) string {
	hex := id.Hex()
	return hex[len(hex)-ShortCodeLength:]
}

// GeoPoint is a latitude/longitude pair captured by the client.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// MediaPointer references a file stored on S3 or a compatible service.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"` // e.g. "image/png", "application/pdf"
}
