package discord

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/services"
	"github.com/KirkDiggler/profile-onboarding/internal/testutils"
)

func TestSetupPipeline(t *testing.T) {
	repo := profiles.NewInMemoryRepository(nil)
	testutils.SeedProfile(t, repo, "test-user-123", "Ada")
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)

	pipeline := SetupPipeline(&PipelineConfig{
		Provider: services.NewProvider(&services.ProviderConfig{
			ProfileRepository: repo,
			Clock:             testutils.NewFakeClock(),
			Metrics:           m,
		}),
		Metrics: m,
	})

	responder := core.NewMockResponder()
	ctx := core.NewTestInteractionContext().AsCommand("onboard")
	require.NoError(t, pipeline.Execute(ctx.InteractionContext, responder))

	require.Len(t, responder.Responses, 1)
	assert.Equal(t, "Welcome!", responder.Responses[0].Embeds[0].Title)
	count, err := testutil.GatherAndCount(reg, "onboarding_discord_interactions_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewBot_RequiresCredentials(t *testing.T) {
	_, err := NewBot(&BotConfig{Pipeline: core.NewPipeline(nil)})

	assert.Error(t, err)
}
