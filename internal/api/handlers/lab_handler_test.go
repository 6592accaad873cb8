package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aayur-gram-api-server/internal/api/middleware"
	"aayur-gram-api-server/internal/database/memory"
	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUploader struct {
	key, contentType, body string
	err                    error
}

func (f *fakeUploader) UploadFile(_ context.Context, r io.Reader, key, contentType string) (string, error) {
	b, _ := io.ReadAll(r)
	f.key, f.contentType, f.body = key, contentType, string(b)
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/" + key, nil
}

func multipartBody(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadRouter(h *LabHandler) *gin.Engine {
	r := gin.New()
	r.POST("/lab/:id/attachments", h.UploadAttachment)
	return r
}

func TestUploadAttachment(t *testing.T) {
	store := memory.NewLabRecordStore()
	rec := &models.LabRecord{BatchID: "B-7", TechnicianID: "t1"}
	require.NoError(t, store.Create(context.Background(), rec))

	up := &fakeUploader{}
	r := uploadRouter(&LabHandler{Records: store, Uploader: up, Log: zap.NewNop()})

	body, ct := multipartBody(t, "certificate.pdf", "%PDF-1.7")
	req := httptest.NewRequest(http.MethodPost, "/lab/"+rec.ID.Hex()+"/attachments", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.True(t, strings.HasPrefix(up.key, "lab-records/"+rec.ID.Hex()+"/"))
	assert.Equal(t, "%PDF-1.7", up.body)

	var resp struct {
		Record models.LabRecord `json:"record"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Record.Attachments, 1)
	assert.Equal(t, "certificate.pdf", resp.Record.Attachments[0].FileName)
	assert.Equal(t, "https://cdn.example.com/"+up.key, resp.Record.Attachments[0].URL)
}

func TestUploadAttachment_Rejections(t *testing.T) {
	store := memory.NewLabRecordStore()
	rec := &models.LabRecord{BatchID: "B-8"}
	require.NoError(t, store.Create(context.Background(), rec))

	send := func(h *LabHandler, id, content string) int {
		body, ct := multipartBody(t, "photo.png", content)
		req := httptest.NewRequest(http.MethodPost, "/lab/"+id+"/attachments", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		uploadRouter(h).ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, send(&LabHandler{Records: store, Log: zap.NewNop()}, rec.ID.Hex(), "x"))

	h := &LabHandler{Records: store, Uploader: &fakeUploader{}, MaxUploadBytes: 4, Log: zap.NewNop()}
	assert.Equal(t, http.StatusRequestEntityTooLarge, send(h, rec.ID.Hex(), "too large"))
	assert.Equal(t, http.StatusBadRequest, send(h, "bad", "x"))
	assert.Equal(t, http.StatusNotFound, send(h, primitive.NewObjectID().Hex(), "x"))

	core, logs := observer.New(zap.ErrorLevel)
	h = &LabHandler{Records: store, Uploader: &fakeUploader{err: errors.New("s3 down")}, Log: zap.New(core)}
	assert.Equal(t, http.StatusInternalServerError, send(h, rec.ID.Hex(), "x"))
	assert.Equal(t, 1, logs.Len())
}

func TestLabRecordRequest_ToUpdate(t *testing.T) {
	u, err := LabRecordRequest{BatchID: " B-1 ", TestDate: "2024-03-01", Status: "PASS"}.toUpdate()
	require.NoError(t, err)
	assert.Equal(t, "B-1", u.BatchID)
	assert.Equal(t, models.LabStatusPass, u.Status)
	require.NotNil(t, u.TestDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *u.TestDate)
	assert.Nil(t, u.CollectionID)

	u, err = LabRecordRequest{TestDate: "2024-03-01T10:30:00+05:30"}.toUpdate()
	require.NoError(t, err)
	assert.Equal(t, 5, u.TestDate.Hour())
	assert.Equal(t, models.LabStatusPending, u.Status)

	for _, req := range []LabRecordRequest{
		{CollectionID: "123"},
		{TestDate: "01/03/2024"},
		{Status: "unknown"},
	} {
		_, err := req.toUpdate()
		assert.ErrorIs(t, err, errs.ErrInvalidInput, "%+v", req)
	}
}

func TestCreateLabRecord_TechnicianDefaultsToCaller(t *testing.T) {
	store := memory.NewLabRecordStore()
	h := &LabHandler{Records: store, Log: zap.NewNop()}

	r := gin.New()
	r.POST("/lab", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "652f1c0e8b3e4a0012345678")
		c.Set(middleware.ContextUserRole, models.RoleLab)
		c.Next()
	}, h.CreateLabRecord)

	for _, tc := range []struct{ body, want string }{
		{`{"batchId":"B-1"}`, "652f1c0e8b3e4a0012345678"},
		{`{"batchId":"B-2","technicianId":"ext-42"}`, "ext-42"},
		{``, "652f1c0e8b3e4a0012345678"},
	} {
		req := httptest.NewRequest(http.MethodPost, "/lab", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp struct {
			Record models.LabRecord `json:"record"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.want, resp.Record.TechnicianID)
	}
	assert.Equal(t, 3, store.Count())
}
