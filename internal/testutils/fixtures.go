package testutils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
)

// ProfileCreator is the part of a profile store fixtures need
type ProfileCreator interface {
	Create(ctx context.Context, record *profile.Record) error
}

// CreateTestRecord returns a freshly signed-up profile record
func CreateTestRecord(id, firstName string) *profile.Record {
	return &profile.Record{
		ID:        id,
		FirstName: firstName,
	}
}

// SeedProfile stores a signed-up record the way signup would
func SeedProfile(t *testing.T, store ProfileCreator, id, firstName string) *profile.Record {
	t.Helper()

	record := CreateTestRecord(id, firstName)
	require.NoError(t, store.Create(context.Background(), record))
	return record
}
