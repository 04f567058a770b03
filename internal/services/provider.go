package services

import (
	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/sessions"
	onboardingService "github.com/KirkDiggler/profile-onboarding/internal/services/onboarding"
	settingsService "github.com/KirkDiggler/profile-onboarding/internal/services/settings"
)

// Provider holds all service instances
type Provider struct {
	OnboardingService onboardingService.Service
	SettingsService   settingsService.Service
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	ProfileRepository profiles.Repository
	SessionRepository sessions.Repository
	Clock             onboarding.Clock
	IncludeInterests  bool
	Metrics           *metrics.Metrics
	Logger            *zap.Logger
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repositories if none provided
	profileRepo := cfg.ProfileRepository
	if profileRepo == nil {
		profileRepo = profiles.NewInMemoryRepository(nil)
	}

	sessionRepo := cfg.SessionRepository
	if sessionRepo == nil {
		sessionRepo = sessions.NewInMemoryRepository()
	}

	return &Provider{
		OnboardingService: onboardingService.NewService(&onboardingService.ServiceConfig{
			ProfileRepository: profileRepo,
			SessionRepository: sessionRepo,
			Clock:             cfg.Clock,
			IncludeInterests:  cfg.IncludeInterests,
			Metrics:           cfg.Metrics,
			Logger:            cfg.Logger,
		}),
		SettingsService: settingsService.NewService(&settingsService.ServiceConfig{
			Repository: profileRepo,
			Logger:     cfg.Logger,
		}),
	}
}
