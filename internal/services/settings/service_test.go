package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/services/settings"
	"github.com/KirkDiggler/profile-onboarding/internal/testutils"
)

func TestSettingsService(t *testing.T) {
	setup := func(t *testing.T) (settings.Service, *identity.Static, profiles.Repository) {
		t.Helper()
		repo := profiles.NewInMemoryRepository(nil)
		testutils.SeedProfile(t, repo, "user-1", "Ada")
		svc := settings.NewService(&settings.ServiceConfig{Repository: repo})
		return svc, identity.NewStatic(identity.Principal{ID: "user-1"}), repo
	}
	ctx := context.Background()

	t.Run("load falls back to the default picture", func(t *testing.T) {
		svc, who, _ := setup(t)

		form, err := svc.Load(ctx, who)
		require.NoError(t, err)

		assert.Equal(t, "", form.DisplayName)
		assert.Equal(t, settings.DefaultProfilePicture, form.ProfilePicture)
		assert.False(t, form.View.EditingDisplayName)
	})

	t.Run("editing is gated by the view state", func(t *testing.T) {
		svc, who, _ := setup(t)
		form, err := svc.Load(ctx, who)
		require.NoError(t, err)

		assert.True(t, apperr.IsFailedPrecondition(form.SetDisplayName("ada")))

		form.StartEditing()
		require.NoError(t, form.SetDisplayName("  ada  "))
		assert.Equal(t, "ada", form.DisplayName)
	})

	t.Run("save merges both fields", func(t *testing.T) {
		svc, who, repo := setup(t)
		form, err := svc.Load(ctx, who)
		require.NoError(t, err)
		form.StartEditing()
		require.NoError(t, form.SetDisplayName("ada"))
		form.ProfilePicture = "/images/avatar3.png"

		require.NoError(t, svc.Save(ctx, who, form))

		assert.False(t, form.View.EditingDisplayName)
		record, err := repo.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "ada", record.DisplayName)
		assert.Equal(t, "/images/avatar3.png", record.ProfilePicture)
		assert.Equal(t, "Ada", record.FirstName)
		assert.False(t, record.ProfileCompleted)
	})

	t.Run("discard reloads stored values", func(t *testing.T) {
		svc, who, _ := setup(t)
		form, err := svc.Load(ctx, who)
		require.NoError(t, err)
		form.StartEditing()
		require.NoError(t, form.SetDisplayName("unsaved"))

		reloaded, err := svc.Discard(ctx, who)
		require.NoError(t, err)
		assert.Equal(t, "", reloaded.DisplayName)
	})

	t.Run("requires a principal", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Load(ctx, identity.NewSignedOut())
		assert.True(t, apperr.IsUnauthenticated(err))

		err = svc.Save(ctx, identity.NewSignedOut(), &settings.Form{})
		assert.True(t, apperr.IsUnauthenticated(err))
	})

	t.Run("unknown profile", func(t *testing.T) {
		svc, _, _ := setup(t)

		_, err := svc.Load(ctx, identity.NewStatic(identity.Principal{ID: "ghost"}))
		assert.True(t, apperr.IsNotFound(err))
	})
}
