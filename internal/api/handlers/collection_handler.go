package handlers

import (
	"net/http"
	"strings"

	"aayur-gram-api-server/internal/api/middleware"
	"aayur-gram-api-server/internal/database"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	Collections CollectionStore
	Log         *zap.Logger
}

type LocationRequest struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" binding:"required,min=-180,max=180"`
}

type CreateCollectionRequest struct {
	Species      string           `json:"species" binding:"required"`
	QuantityKg   *float64         `json:"quantityKg" binding:"required,min=0"`
	Notes        string           `json:"notes"`
	Location     *LocationRequest `json:"location"`
	Freshness    *float64         `json:"freshness" binding:"omitempty,min=0,max=10"`
	SizeScore    *float64         `json:"sizeScore" binding:"omitempty,min=0,max=10"`
	QualityNotes string           `json:"qualityNotes"`
}

// CreateCollection records a harvest owned by the caller.
func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	collectorID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "species and quantityKg are required; quantityKg must be >= 0 and scores within 0-10")
		return
	}
	species := strings.TrimSpace(req.Species)
	if species == "" {
		badRequest(c, "species and quantityKg are required; quantityKg must be >= 0 and scores within 0-10")
		return
	}

	record := &models.CollectionRecord{
		CollectorID:  collectorID,
		Species:      species,
		QuantityKg:   *req.QuantityKg,
		Notes:        req.Notes,
		Freshness:    req.Freshness,
		SizeScore:    req.SizeScore,
		QualityNotes: req.QualityNotes,
	}
	if req.Location != nil {
		record.Location = &models.GeoPoint{Lat: *req.Location.Lat, Lng: *req.Location.Lng}
	}

	if err := h.Collections.Create(c.Request.Context(), record); err != nil {
		respondError(c, h.Log, "createCollection", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"collection": record})
}

// ListMyCollections returns the caller's own harvests, newest first.
func (h *CollectionHandler) ListMyCollections(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	collectorID, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	items, err := h.Collections.ListByCollector(c.Request.Context(), collectorID)
	if err != nil {
		respondError(c, h.Log, "listMyCollections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": items})
}

// ListAllCollections searches every harvest by id, short code or species.
func (h *CollectionHandler) ListAllCollections(c *gin.Context) {
	filter := search.Build(c.Query("q"), database.CollectionSearchFields...)

	items, err := h.Collections.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Log, "listAllCollections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": items})
}

func (h *CollectionHandler) GetCollectionByID(c *gin.Context) {
	id, ok := pathObjectID(c)
	if !ok {
		return
	}

	record, err := h.Collections.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, "getCollectionById", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": record})
}
