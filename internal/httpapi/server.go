package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	onboardingService "github.com/KirkDiggler/profile-onboarding/internal/services/onboarding"
	settingsService "github.com/KirkDiggler/profile-onboarding/internal/services/settings"
)

const shutdownTimeout = 10 * time.Second

// ServerConfig holds the HTTP shell's dependencies
type ServerConfig struct {
	Addr       string
	Onboarding onboardingService.Service // Required
	Settings   settingsService.Service   // Required
	Verifier   *identity.TokenVerifier   // Required
	Logger     *zap.Logger
}

// Server is the JSON API for the wizard and the settings editor
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer creates the server and its routes
func NewServer(cfg *ServerConfig) *Server {
	if cfg.Verifier == nil {
		panic("token verifier is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(Recovery(logger), RequestLogger(logger))

	s := &Server{
		engine: engine,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes(cfg)
	return s
}

func (s *Server) setupRoutes(cfg *ServerConfig) {
	onboardingHandler := NewOnboardingHandler(cfg.Onboarding)
	settingsHandler := NewSettingsHandler(cfg.Settings)

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/v1")
	api.Use(AuthMiddleware(cfg.Verifier))

	onboarding := api.Group("/onboarding")
	{
		onboarding.POST("", onboardingHandler.Start)
		onboarding.GET("/:id", onboardingHandler.Get)
		onboarding.POST("/:id/advance", onboardingHandler.Advance)
		onboarding.POST("/:id/retreat", onboardingHandler.Retreat)
		onboarding.PUT("/:id/name", onboardingHandler.SetName)
		onboarding.PUT("/:id/gender", onboardingHandler.SetGender)
		onboarding.PUT("/:id/picture", onboardingHandler.SetPicture)
		onboarding.PUT("/:id/bio", onboardingHandler.SetBio)
		onboarding.POST("/:id/interests/toggle", onboardingHandler.ToggleInterest)
		onboarding.POST("/:id/availability/toggle", onboardingHandler.ToggleAvailability)
		onboarding.POST("/:id/commit", onboardingHandler.Commit)
		onboarding.DELETE("/:id", onboardingHandler.Abandon)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", settingsHandler.Load)
		settings.PUT("", settingsHandler.Save)
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http api stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http api: %w", err)
	}
	return nil
}
