package profiles

//go:generate mockgen -destination=mock/mock.go -package=mockprofiles -source=interface.go

import (
	"context"
	"time"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
)

// Repository stores profile records keyed by principal ID
type Repository interface {
	// Create stores a new record. Signup owns this; onboarding only merges.
	Create(ctx context.Context, record *profile.Record) error

	// Get retrieves a record by principal ID
	Get(ctx context.Context, id string) (*profile.Record, error)

	// Merge applies every field of the update in one write or none of them.
	// A missing record is a not-found error, never an implicit create.
	Merge(ctx context.Context, id string, update *profile.Update) error
}

// TimeProvider stamps UpdatedAt
type TimeProvider interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now().UTC() }

// SystemTime returns a TimeProvider backed by the wall clock
func SystemTime() TimeProvider {
	return systemTime{}
}
