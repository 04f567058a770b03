package profiles_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	mockprofiles "github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles/mock"
)

func TestSeed_SkipsExistingRecords(t *testing.T) {
	ctx := context.Background()
	repo := profiles.NewInMemoryRepository(fixedTime{now: testNow})
	require.NoError(t, repo.Create(ctx, &profile.Record{ID: "user-1", FirstName: "Ada", Bio: "kept"}))

	created, err := profiles.Seed(ctx, repo,
		&profile.Record{ID: "user-1", FirstName: "Someone else"},
		&profile.Record{ID: "user-2", FirstName: "Grace"},
	)

	require.NoError(t, err)
	assert.Equal(t, 1, created)

	existing, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", existing.FirstName)
	assert.Equal(t, "kept", existing.Bio)

	seeded, err := repo.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Grace", seeded.FirstName)

	require.NoError(t, repo.Merge(ctx, "user-2", &profile.Update{ProfileCompleted: profile.Ptr(true)}))
}

func TestSeed_StopsOnStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockprofiles.NewMockRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperr.Unavailable(errors.New("refused"), "redis down"))

	created, err := profiles.Seed(context.Background(), repo,
		&profile.Record{ID: "user-1"},
		&profile.Record{ID: "user-2"},
	)

	assert.Equal(t, 0, created)
	assert.True(t, apperr.IsUnavailable(err))
}
