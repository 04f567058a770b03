package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
)

const principalKey = "principal"

// AuthMiddleware verifies the bearer token and stores the principal
func AuthMiddleware(verifier *identity.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// currentIdentity returns a provider signed in as the request's principal
func currentIdentity(c *gin.Context) (identity.Principal, *identity.Static, error) {
	value, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, nil, apperr.Unauthenticated("missing principal")
	}
	principal, ok := value.(identity.Principal)
	if !ok || principal.ID == "" {
		return identity.Principal{}, nil, apperr.Unauthenticated("missing principal")
	}
	return principal, identity.NewStatic(principal), nil
}

// RequestLogger logs one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, zap.Error(err.Err))
		}

		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields...)
			return
		}
		logger.Debug("request handled", fields...)
	}
}

// Recovery turns a panic into a 500 reply
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("route", c.FullPath()),
		)
		respondError(c, apperr.Internal("panic"))
	})
}
