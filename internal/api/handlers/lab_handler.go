package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aayur-gram-api-server/internal/api/middleware"
	"aayur-gram-api-server/internal/database"
	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/s3"
	"aayur-gram-api-server/internal/search"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 << 20

type LabHandler struct {
	Records        LabRecordStore
	Uploader       FileUploader // nil when attachments are not configured
	MaxUploadBytes int64
	Log            *zap.Logger
}

// LabRecordRequest is the body of both create and update.
type LabRecordRequest struct {
	BatchID         string `json:"batchId"`
	CollectionID    string `json:"collectionId"`
	TechnicianID    string `json:"technicianId"`
	TestDate        string `json:"testDate"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	Moisture        string `json:"moisture"`
	AshContent      string `json:"ashContent"`
	PesticideLevel  string `json:"pesticideLevel"`
	MicrobialLoad   string `json:"microbialLoad"`
	ActiveCompounds string `json:"activeCompounds"`
	Report          string `json:"report"`
}

// toUpdate validates the request and converts it to the store's field set.
func (req LabRecordRequest) toUpdate() (models.LabRecordUpdate, error) {
	u := models.LabRecordUpdate{
		BatchID:      strings.TrimSpace(req.BatchID),
		TechnicianID: strings.TrimSpace(req.TechnicianID),
		Notes:        req.Notes,
		TestParameters: models.TestParameters{
			Moisture:        req.Moisture,
			AshContent:      req.AshContent,
			PesticideLevel:  req.PesticideLevel,
			MicrobialLoad:   req.MicrobialLoad,
			ActiveCompounds: req.ActiveCompounds,
		},
		Report: req.Report,
	}

	if cid := strings.TrimSpace(req.CollectionID); cid != "" {
		oid, err := primitive.ObjectIDFromHex(cid)
		if err != nil {
			return u, fmt.Errorf("%w: Invalid collectionId. Expecting a 24-char hex ObjectId.", errs.ErrInvalidInput)
		}
		u.CollectionID = &oid
	}

	if td := strings.TrimSpace(req.TestDate); td != "" {
		date, err := parseTestDate(td)
		if err != nil {
			return u, err
		}
		u.TestDate = &date
	}

	status, err := models.ParseLabStatus(req.Status)
	if err != nil {
		return u, err
	}
	u.Status = status
	return u, nil
}

// parseTestDate accepts a calendar date or a full RFC 3339 timestamp.
func parseTestDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: Invalid testDate. Expecting YYYY-MM-DD.", errs.ErrInvalidInput)
}

// bindLabRecord accepts an empty body as an empty request.
func bindLabRecord(c *gin.Context) (models.LabRecordUpdate, bool) {
	var req LabRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid lab record body")
		return models.LabRecordUpdate{}, false
	}
	u, err := req.toUpdate()
	if err != nil {
		badRequest(c, strings.TrimPrefix(err.Error(), errs.ErrInvalidInput.Error()+": "))
		return models.LabRecordUpdate{}, false
	}
	return u, true
}

// CreateLabRecord stores a test result; the technician defaults to the caller.
func (h *LabHandler) CreateLabRecord(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	u, ok := bindLabRecord(c)
	if !ok {
		return
	}
	if u.TechnicianID == "" {
		u.TechnicianID = caller.ID
	}

	record := &models.LabRecord{
		BatchID:        u.BatchID,
		CollectionID:   u.CollectionID,
		TechnicianID:   u.TechnicianID,
		TestDate:       u.TestDate,
		Status:         u.Status,
		Notes:          u.Notes,
		TestParameters: u.TestParameters,
		Report:         u.Report,
	}
	if err := h.Records.Create(c.Request.Context(), record); err != nil {
		respondError(c, h.Log, "createLabRecord", err)
		return
	}

	h.Log.Info("lab record created",
		zap.String("id", record.ID.Hex()),
		zap.String("shortCode", models.ShortCode(record.ID)),
		zap.String("technicianId", record.TechnicianID),
	)
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

// ListLabRecords searches all records by id, short code or batch id.
func (h *LabHandler) ListLabRecords(c *gin.Context) {
	filter := search.Build(c.Query("q"), database.LabRecordSearchFields...)

	items, err := h.Records.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.Log, "listLabRecords", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

// ListMyLabRecords is ListLabRecords narrowed to the caller's records.
func (h *LabHandler) ListMyLabRecords(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	filter := search.Build(c.Query("q"), database.LabRecordSearchFields...)

	items, err := h.Records.ListByTechnician(c.Request.Context(), caller.ID, filter)
	if err != nil {
		respondError(c, h.Log, "listMyLabRecords", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

func (h *LabHandler) GetLabRecord(c *gin.Context) {
	id, ok := pathObjectID(c)
	if !ok {
		return
	}

	record, err := h.Records.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, "getLabRecord", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// UpdateLabRecord replaces the record's mutable fields. Concurrent updates
// are not detected; the last one wins.
func (h *LabHandler) UpdateLabRecord(c *gin.Context) {
	id, ok := pathObjectID(c)
	if !ok {
		return
	}
	u, ok := bindLabRecord(c)
	if !ok {
		return
	}

	record, err := h.Records.Update(c.Request.Context(), id, u)
	if err != nil {
		respondError(c, h.Log, "updateLabRecord", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

// UploadAttachment stores a certificate or photo for a record on S3.
func (h *LabHandler) UploadAttachment(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Attachment storage is not configured"})
		return
	}
	id, ok := pathObjectID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	if fileHeader.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": fmt.Sprintf("file exceeds %d bytes", limit)})
		return
	}

	if _, err := h.Records.FindByID(c.Request.Context(), id); err != nil {
		respondError(c, h.Log, "uploadAttachment", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.Log, "uploadAttachment", err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, s3.ObjectKey(id.Hex(), fileHeader.Filename), contentType)
	if err != nil {
		respondError(c, h.Log, "uploadAttachment", err)
		return
	}

	record, err := h.Records.AddAttachment(c.Request.Context(), id, models.MediaPointer{
		ID:       uuid.New().String(),
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: contentType,
	})
	if err != nil {
		respondError(c, h.Log, "uploadAttachment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}
