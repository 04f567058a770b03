package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/sessions"
)

func TestInMemoryRepository(t *testing.T) {
	setup := func(t *testing.T) (sessions.Repository, context.Context) {
		t.Helper()
		return sessions.NewInMemoryRepository(), context.Background()
	}

	newSession := func(id, ownerID string) *onboarding.Session {
		return onboarding.NewSession(id, ownerID, nil, time.Now())
	}

	t.Run("creates and retrieves by ID and owner", func(t *testing.T) {
		repo, ctx := setup(t)
		session := newSession("s-1", "user-1")

		require.NoError(t, repo.Create(ctx, session))

		byID, err := repo.Get(ctx, "s-1")
		require.NoError(t, err)
		assert.Same(t, session, byID)

		byOwner, err := repo.GetByOwner(ctx, "user-1")
		require.NoError(t, err)
		assert.Same(t, session, byOwner)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		repo, ctx := setup(t)

		assert.True(t, apperr.IsInvalidArgument(repo.Create(ctx, nil)))
		assert.True(t, apperr.IsInvalidArgument(repo.Create(ctx, newSession("", "user-1"))))
		assert.True(t, apperr.IsInvalidArgument(repo.Create(ctx, newSession("s-1", ""))))
	})

	t.Run("one session per owner", func(t *testing.T) {
		repo, ctx := setup(t)
		require.NoError(t, repo.Create(ctx, newSession("s-1", "user-1")))

		err := repo.Create(ctx, newSession("s-2", "user-1"))
		assert.True(t, apperr.IsAlreadyExists(err))

		err = repo.Create(ctx, newSession("s-1", "user-2"))
		assert.True(t, apperr.IsAlreadyExists(err))
	})

	t.Run("delete frees the owner slot", func(t *testing.T) {
		repo, ctx := setup(t)
		require.NoError(t, repo.Create(ctx, newSession("s-1", "user-1")))

		require.NoError(t, repo.Delete(ctx, "s-1"))

		_, err := repo.Get(ctx, "s-1")
		assert.True(t, apperr.IsNotFound(err))
		_, err = repo.GetByOwner(ctx, "user-1")
		assert.True(t, apperr.IsNotFound(err))
		assert.NoError(t, repo.Create(ctx, newSession("s-2", "user-1")))
	})

	t.Run("delete missing session", func(t *testing.T) {
		repo, ctx := setup(t)
		assert.True(t, apperr.IsNotFound(repo.Delete(ctx, "ghost")))
	})
}
