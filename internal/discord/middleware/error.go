package middleware

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
)

// ErrorMiddleware turns handler errors into ephemeral replies. Only errors
// that carry no user-safe message are logged at error level.
func ErrorMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			result, err := next.Handle(ctx)
			if err == nil {
				return result, nil
			}

			handlerErr := core.FromError(err)
			if handlerErr.Code >= core.ErrorCodeInternal && handlerErr.Code != core.ErrorCodeUnavailable {
				logger.Error("handler error",
					zap.String("user_id", ctx.UserID),
					zap.String("custom_id", ctx.GetCustomID()),
					zap.String("command", ctx.GetCommandName()),
					zap.Error(err),
				)
			}

			message := "An error occurred while processing your request."
			if handlerErr.ShowToUser && handlerErr.UserMessage != "" {
				message = handlerErr.UserMessage
			}

			return &core.HandlerResult{
				Response: core.NewEphemeralResponse("❌ " + message),
			}, nil
		})
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware(logger *zap.Logger) core.Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (result *core.HandlerResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic recovered in handler",
						zap.String("user_id", ctx.UserID),
						zap.String("panic", fmt.Sprint(r)),
						zap.Stack("stack"),
					)
					result = &core.HandlerResult{
						Response: core.NewEphemeralResponse("An unexpected error occurred. Please try again later."),
					}
					err = nil
				}
			}()

			return next.Handle(ctx)
		})
	}
}
