package profiles

import (
	"context"
	"sync"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// InMemoryRepository keeps records in a map. A merge happens under one lock,
// so readers never see half of it.
type InMemoryRepository struct {
	mu           sync.RWMutex
	records      map[string]*profile.Record
	timeProvider TimeProvider
}

// NewInMemoryRepository creates an empty in-memory repository
func NewInMemoryRepository(timeProvider TimeProvider) *InMemoryRepository {
	if timeProvider == nil {
		timeProvider = SystemTime()
	}
	return &InMemoryRepository{
		records:      make(map[string]*profile.Record),
		timeProvider: timeProvider,
	}
}

var _ Repository = (*InMemoryRepository)(nil)

// Create stores a new record
func (r *InMemoryRepository) Create(ctx context.Context, record *profile.Record) error {
	if record == nil {
		return apperr.InvalidArgument("record cannot be nil")
	}
	if record.ID == "" {
		return apperr.InvalidArgument("record ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		return apperr.AlreadyExistsf("profile '%s' already exists", record.ID).
			WithMeta("profile_id", record.ID)
	}

	stored := record.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = r.timeProvider.Now()
	}
	r.records[record.ID] = stored

	return nil
}

// Get retrieves a copy of a record
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*profile.Record, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("profile ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, apperr.NotFoundf("profile '%s' not found", id).
			WithMeta("profile_id", id)
	}

	return record.Clone(), nil
}

// Merge applies the update to the stored record
func (r *InMemoryRepository) Merge(ctx context.Context, id string, update *profile.Update) error {
	if id == "" {
		return apperr.InvalidArgument("profile ID is required")
	}
	if update.IsEmpty() {
		return apperr.InvalidArgument("update has no fields")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, exists := r.records[id]
	if !exists {
		return apperr.NotFoundf("profile '%s' not found", id).
			WithMeta("profile_id", id)
	}

	merged := record.Clone()
	update.ApplyTo(merged)
	merged.UpdatedAt = r.timeProvider.Now()
	r.records[id] = merged

	return nil
}
