package sessions

import (
	"context"
	"sync"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// InMemoryRepository is the session store used by every shell
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*onboarding.Session
	byOwner  map[string]string
}

// NewInMemoryRepository creates an empty session store
func NewInMemoryRepository() Repository {
	return &InMemoryRepository{
		sessions: make(map[string]*onboarding.Session),
		byOwner:  make(map[string]string),
	}
}

// Create stores a new session
func (r *InMemoryRepository) Create(ctx context.Context, session *onboarding.Session) error {
	if session == nil {
		return apperr.InvalidArgument("session cannot be nil")
	}
	if session.ID == "" {
		return apperr.InvalidArgument("session ID is required")
	}
	if session.OwnerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return apperr.AlreadyExistsf("session with ID '%s' already exists", session.ID).
			WithMeta("session_id", session.ID)
	}
	if existing, exists := r.byOwner[session.OwnerID]; exists {
		return apperr.AlreadyExistsf("owner '%s' already has session '%s'", session.OwnerID, existing).
			WithMeta("owner_id", session.OwnerID).
			WithMeta("session_id", existing)
	}

	r.sessions[session.ID] = session
	r.byOwner[session.OwnerID] = session.ID

	return nil
}

// Get retrieves a session by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*onboarding.Session, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, apperr.NotFoundf("session with ID '%s' not found", id).
			WithMeta("session_id", id)
	}

	return session, nil
}

// GetByOwner retrieves the owner's active session
func (r *InMemoryRepository) GetByOwner(ctx context.Context, ownerID string) (*onboarding.Session, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byOwner[ownerID]
	if !exists {
		return nil, apperr.NotFoundf("no session found for owner '%s'", ownerID).
			WithMeta("owner_id", ownerID)
	}

	return r.sessions[id], nil
}

// Delete removes a session
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.InvalidArgument("session ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		return apperr.NotFoundf("session with ID '%s' not found", id).
			WithMeta("session_id", id)
	}

	delete(r.sessions, id)
	if r.byOwner[session.OwnerID] == id {
		delete(r.byOwner, session.OwnerID)
	}
	return nil
}
