package sessions

import (
	"context"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
)

// Repository holds live onboarding sessions. Sessions carry running timers
// and subscriptions, so they never leave the process.
type Repository interface {
	// Create stores a new session; an owner may hold only one
	Create(ctx context.Context, session *onboarding.Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*onboarding.Session, error)

	// GetByOwner retrieves the owner's active session
	GetByOwner(ctx context.Context, ownerID string) (*onboarding.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error
}
