package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
)

// LoggingMiddleware logs each interaction with its duration and outcome
func LoggingMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			kind, action := describe(ctx)
			fields := []zap.Field{
				zap.String("kind", kind),
				zap.String("action", action),
				zap.String("user_id", ctx.UserID),
				zap.String("guild_id", ctx.GuildID),
			}

			start := time.Now()
			result, err := next.Handle(ctx)
			fields = append(fields, zap.Duration("duration", time.Since(start)))

			if err != nil {
				logger.Warn("interaction failed", append(fields, zap.Error(err))...)
				return result, err
			}
			logger.Debug("interaction handled", fields...)
			return result, nil
		})
	}
}

// MetricsMiddleware counts interactions and their duration
func MetricsMiddleware(m *metrics.Metrics) core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			kind, action := describe(ctx)

			start := time.Now()
			result, err := next.Handle(ctx)

			outcome := "ok"
			if err != nil {
				outcome = resultLabel(err)
			}
			m.ObserveInteraction(kind, action, outcome, time.Since(start))

			return result, err
		})
	}
}

// describe returns a low-cardinality kind and action for an interaction
func describe(ctx *core.InteractionContext) (string, string) {
	switch {
	case ctx.IsCommand():
		return "command", ctx.GetCommandName()
	case ctx.IsComponent():
		if id := ctx.ParsedCustomID(); id != nil {
			return "component", id.Domain + ":" + id.Action
		}
		return "component", "unknown"
	case ctx.IsModal():
		if id := ctx.ParsedCustomID(); id != nil {
			return "modal", id.Domain + ":" + id.Action
		}
		return "modal", "unknown"
	}
	return "unknown", "unknown"
}

func resultLabel(err error) string {
	switch core.FromError(err).Code {
	case core.ErrorCodeBadRequest, core.ErrorCodeUnprocessable:
		return "invalid"
	case core.ErrorCodeUnauthorized, core.ErrorCodeForbidden:
		return "denied"
	case core.ErrorCodeNotFound:
		return "not_found"
	case core.ErrorCodeConflict:
		return "conflict"
	case core.ErrorCodeUnavailable:
		return "unavailable"
	}
	return "error"
}
