package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
)

func respond(content string) core.Handler {
	return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
		return &core.HandlerResult{Response: core.NewResponse(content)}, nil
	})
}

func failWith(err error) core.Handler {
	return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
		return nil, err
	})
}

func TestErrorMiddleware(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	handler := ErrorMiddleware(zap.New(obsCore))

	ctx := core.NewTestInteractionContext().AsComponent("onboard:next:s1").InteractionContext

	result, err := handler(failWith(apperr.Validation("bio is too long"))).Handle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Response.Ephemeral)
	assert.Equal(t, "❌ bio is too long", result.Response.Content)
	assert.Equal(t, 0, logs.Len())

	result, err = handler(failWith(errors.New("boom"))).Handle(ctx)
	require.NoError(t, err)
	assert.Contains(t, result.Response.Content, "internal error")
	assert.Equal(t, 1, logs.FilterMessage("handler error").Len())
}

func TestRecoveryMiddleware(t *testing.T) {
	panicky := core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
		panic("kaboom")
	})

	ctx := core.NewTestInteractionContext().AsCommand("onboard").InteractionContext
	result, err := RecoveryMiddleware(nil)(panicky).Handle(ctx)

	require.NoError(t, err)
	assert.True(t, result.Response.Ephemeral)
}

func TestLoggingMiddleware(t *testing.T) {
	obsCore, logs := observer.New(zap.DebugLevel)
	mw := LoggingMiddleware(zap.New(obsCore))
	ctx := core.NewTestInteractionContext().AsComponent("onboard:gender:s1", "female").InteractionContext

	_, err := mw(respond("ok")).Handle(ctx)
	require.NoError(t, err)
	_, err = mw(failWith(apperr.NotFound("gone"))).Handle(ctx)
	require.Error(t, err)

	handled := logs.FilterMessage("interaction handled").All()
	require.Len(t, handled, 1)
	assert.Equal(t, "onboard:gender", handled[0].ContextMap()["action"])
	assert.Equal(t, 1, logs.FilterMessage("interaction failed").Len())
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.MustNew(reg)
	mw := MetricsMiddleware(m)
	ctx := core.NewTestInteractionContext().AsComponent("onboard:finish:s1").InteractionContext

	_, _ = mw(respond("ok")).Handle(ctx)
	_, _ = mw(failWith(apperr.Unavailable(errors.New("down"), "store down"))).Handle(ctx)

	families, err := reg.Gather()
	require.NoError(t, err)

	results := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "onboarding_discord_interactions_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "result" {
					results[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"ok": 1, "unavailable": 1}, results)
}

func TestAuthorizationMiddleware(t *testing.T) {
	mw := AuthorizationMiddleware(&AuthConfig{
		UserBlacklist: []string{"banned"},
		CustomChecker: func(ctx *core.InteractionContext) (bool, string) {
			return ctx.UserID != "stranger", "Only the owner can do that."
		},
	})
	next := respond("allowed")

	tests := []struct {
		user     string
		expected string
	}{
		{"owner", "allowed"},
		{"banned", "❌ You are not authorized to use this command."},
		{"stranger", "❌ Only the owner can do that."},
		{"", "❌ I couldn't tell who you are."},
	}

	for _, tt := range tests {
		ctx := core.NewTestInteractionContext().WithUserID(tt.user).AsComponent("onboard:next:s1").InteractionContext
		result, err := mw(next).Handle(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result.Response.Content, tt.user)
	}
}

func TestAuthorizationMiddleware_RequireGuild(t *testing.T) {
	mw := AuthorizationMiddleware(&AuthConfig{RequireGuildMember: true})
	test := core.NewTestInteractionContext().AsCommand("onboard")
	test.GuildID = ""

	result, err := mw(respond("allowed")).Handle(test.InteractionContext)

	require.NoError(t, err)
	assert.Contains(t, result.Response.Content, "server")
}

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	store := NewMemoryRateLimitStore(func() time.Time { return now })
	mw := RateLimitMiddleware(&RateLimitConfig{
		MaxRequests: 2,
		Window:      time.Minute,
		Store:       store,
	})
	handler := mw(respond("ok"))
	ctx := core.NewTestInteractionContext().AsComponent("onboard:next:s1").InteractionContext

	for i := 0; i < 2; i++ {
		result, err := handler.Handle(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", result.Response.Content)
	}

	result, err := handler.Handle(ctx)
	require.NoError(t, err)
	assert.True(t, result.Response.Ephemeral)
	assert.Contains(t, result.Response.Content, "too fast")

	now = now.Add(2 * time.Minute)
	result, err = handler.Handle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Response.Content)
	assert.Equal(t, 1, store.Len())
}
