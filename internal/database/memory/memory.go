// Package memory provides in-memory implementations of the stores, used by
// tests and by `serve --in-memory` for local development without MongoDB.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aayur-gram-api-server/internal/errs"
	"aayur-gram-api-server/internal/models"
	"aayur-gram-api-server/internal/search"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore keeps users in insertion order.
type UserStore struct {
	mu    sync.RWMutex
	users []models.User
}

func NewUserStore() *UserStore { return &UserStore{} }

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email %q: %w", u.Email, errs.ErrConflict)
		}
	}
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users = append(s.users, *u)
	return nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user: %w", errs.ErrNotFound)
}

func (s *UserStore) List(_ context.Context, f search.Filter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for i := len(s.users) - 1; i >= 0; i-- {
		u := s.users[i]
		if f.Match(u.ID, u.Email, u.Name) {
			u.HashedPassword = ""
			out = append(out, u)
		}
	}
	return out, nil
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// CollectionStore keeps harvest records in insertion order.
type CollectionStore struct {
	mu    sync.RWMutex
	items []models.CollectionRecord
}

func NewCollectionStore() *CollectionStore { return &CollectionStore{} }

func (s *CollectionStore) Create(_ context.Context, c *models.CollectionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt, c.UpdatedAt = now, now
	s.items = append(s.items, *c)
	return nil
}

func (s *CollectionStore) ListByCollector(_ context.Context, collectorID primitive.ObjectID) ([]models.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.CollectionRecord{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].CollectorID == collectorID {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *CollectionStore) List(_ context.Context, f search.Filter) ([]models.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.CollectionRecord{}
	for i := len(s.items) - 1; i >= 0; i-- {
		if f.Match(s.items[i].ID, s.items[i].Species) {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *CollectionStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.CollectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.items {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("collection: %w", errs.ErrNotFound)
}

// LabRecordStore keeps lab records in insertion order.
type LabRecordStore struct {
	mu    sync.RWMutex
	items []models.LabRecord
}

func NewLabRecordStore() *LabRecordStore { return &LabRecordStore{} }

func (s *LabRecordStore) Create(_ context.Context, r *models.LabRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt, r.UpdatedAt = now, now
	if r.Status == "" {
		r.Status = models.LabStatusPending
	}
	s.items = append(s.items, *r)
	return nil
}

func (s *LabRecordStore) Update(_ context.Context, id primitive.ObjectID, u models.LabRecordUpdate) (*models.LabRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		r := &s.items[i]
		if r.ID != id {
			continue
		}
		r.BatchID = u.BatchID
		r.CollectionID = u.CollectionID
		r.TestDate = u.TestDate
		r.Status = u.Status
		if r.Status == "" {
			r.Status = models.LabStatusPending
		}
		r.Notes = u.Notes
		r.TestParameters = u.TestParameters
		r.Report = u.Report
		if u.TechnicianID != "" {
			r.TechnicianID = u.TechnicianID
		}
		r.UpdatedAt = time.Now().UTC()
		out := *r
		return &out, nil
	}
	return nil, fmt.Errorf("lab record: %w", errs.ErrNotFound)
}

func (s *LabRecordStore) AddAttachment(_ context.Context, id primitive.ObjectID, m models.MediaPointer) (*models.LabRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		r := &s.items[i]
		if r.ID == id {
			r.Attachments = append(append([]models.MediaPointer(nil), r.Attachments...), m)
			r.UpdatedAt = time.Now().UTC()
			out := *r
			return &out, nil
		}
	}
	return nil, fmt.Errorf("lab record: %w", errs.ErrNotFound)
}

func (s *LabRecordStore) List(ctx context.Context, f search.Filter) ([]models.LabRecord, error) {
	return s.list(f, func(models.LabRecord) bool { return true }), nil
}

func (s *LabRecordStore) ListByTechnician(_ context.Context, technicianID string, f search.Filter) ([]models.LabRecord, error) {
	return s.list(f, func(r models.LabRecord) bool { return r.TechnicianID == technicianID }), nil
}

func (s *LabRecordStore) list(f search.Filter, keep func(models.LabRecord) bool) []models.LabRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.LabRecord{}
	for i := len(s.items) - 1; i >= 0; i-- {
		r := s.items[i]
		if keep(r) && f.Match(r.ID, r.BatchID) {
			out = append(out, r)
		}
	}
	return out
}

func (s *LabRecordStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.LabRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.items {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("lab record: %w", errs.ErrNotFound)
}

// Count returns the number of stored lab records.
func (s *LabRecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
