package middleware

import (
	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
)

// AuthConfig configures authorization behavior
type AuthConfig struct {
	// RequireGuildMember rejects interactions from direct messages
	RequireGuildMember bool

	// UserBlacklist blocks specific users
	UserBlacklist []string

	// CustomChecker allows custom authorization logic
	CustomChecker AuthChecker
}

// AuthChecker decides whether the interaction may proceed; the reason is
// shown to the user when it may not
type AuthChecker func(ctx *core.InteractionContext) (bool, string)

// AuthorizationMiddleware checks if user is authorized
func AuthorizationMiddleware(config *AuthConfig) core.Middleware {
	return func(next core.Handler) core.Handler {
		return core.HandlerFunc(func(ctx *core.InteractionContext) (*core.HandlerResult, error) {
			if ctx.UserID == "" {
				return unauthorizedResponse("I couldn't tell who you are."), nil
			}

			for _, id := range config.UserBlacklist {
				if id == ctx.UserID {
					return unauthorizedResponse("You are not authorized to use this command."), nil
				}
			}

			if config.RequireGuildMember && ctx.GuildID == "" {
				return unauthorizedResponse("This command can only be used in a server."), nil
			}

			if config.CustomChecker != nil {
				if allowed, reason := config.CustomChecker(ctx); !allowed {
					return unauthorizedResponse(reason), nil
				}
			}

			return next.Handle(ctx)
		})
	}
}

func unauthorizedResponse(message string) *core.HandlerResult {
	return &core.HandlerResult{
		Response: core.NewEphemeralResponse("❌ " + message),
	}
}
