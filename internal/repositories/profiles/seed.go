package profiles

import (
	"context"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Seed creates each record that does not exist yet and returns how many
// were created. Existing records are left untouched.
func Seed(ctx context.Context, repo Repository, records ...*profile.Record) (int, error) {
	created := 0
	for _, record := range records {
		err := repo.Create(ctx, record)
		switch {
		case err == nil:
			created++
		case apperr.IsAlreadyExists(err):
		default:
			return created, apperr.Wrap(err, "failed to seed profile")
		}
	}
	return created, nil
}
