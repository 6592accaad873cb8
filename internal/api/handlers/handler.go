package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserStore is the credential store used by the auth and admin handlers.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	List(ctx context.Context, f search.Filter) ([]models.User, error)
}

type CollectionStore interface {
	Create(ctx context.Context, c *models.CollectionRecord) error
	ListByCollector(ctx context.Context, collectorID primitive.ObjectID) ([]models.CollectionRecord, error)
	List(ctx context.Context, f search.Filter) ([]models.CollectionRecord, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.CollectionRecord, error)
}

type LabRecordStore interface {
	Create(ctx context.Context, r *models.LabRecord) error
	Update(ctx context.Context, id primitive.ObjectID, u models.LabRecordUpdate) (*models.LabRecord, error)
	AddAttachment(ctx context.Context, id primitive.ObjectID, m models.MediaPointer) (*models.LabRecord, error)
	List(ctx context.Context, f search.Filter) ([]models.LabRecord, error)
	ListByTechnician(ctx context.Context, technicianID string, f search.Filter) ([]models.LabRecord, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.LabRecord, error)
}

// FileUploader stores an attachment and returns its URL.
type FileUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

// respondError maps err onto the API's status codes. Anything unexpected is
// logged and answered with a generic 500.
func respondError(c *gin.Context, log *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, errs.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": "Already exists"})
	default:
		log.Error(op+" error", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// pathObjectID parses the :id route parameter.
func pathObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id. Expecting a 24-char hex ObjectId.")
		return primitive.NilObjectID, false
	}
	return id, true
}
