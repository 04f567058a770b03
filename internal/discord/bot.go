package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/discord/core"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/handlers"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/middleware"
	"github.com/KirkDiggler/profile-onboarding/internal/discord/routers"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/services"
)

// PipelineConfig holds what the interaction pipeline needs
type PipelineConfig struct {
	Provider     *services.Provider // Required
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	AssetBaseURL string
}

// SetupPipeline builds the interaction pipeline with the global middleware
// and every router registered
func SetupPipeline(cfg *PipelineConfig) *core.Pipeline {
	if cfg.Provider == nil {
		panic("service provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pipeline := core.NewPipeline(logger)

	// Global middleware (order matters)
	pipeline.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(cfg.Metrics),
		middleware.ErrorMiddleware(logger),
		middleware.UserRateLimitMiddleware(60, time.Minute),
	)

	routers.NewOnboardingRouter(pipeline, handlers.NewOnboardingHandler(&handlers.OnboardingHandlerConfig{
		Service:      cfg.Provider.OnboardingService,
		Logger:       logger.Named("onboarding"),
		AssetBaseURL: cfg.AssetBaseURL,
	}))

	return pipeline
}

// BotConfig holds the Discord connection settings
type BotConfig struct {
	Token    string         // Required
	AppID    string         // Required
	GuildID  string         // Optional: register commands for one guild only
	Pipeline *core.Pipeline // Required
	Logger   *zap.Logger
}

// Bot owns the gateway connection
type Bot struct {
	session  *discordgo.Session
	appID    string
	guildID  string
	pipeline *core.Pipeline
	logger   *zap.Logger
}

// NewBot creates the Discord session without connecting
func NewBot(cfg *BotConfig) (*Bot, error) {
	if cfg.Pipeline == nil {
		panic("pipeline is required")
	}
	if cfg.Token == "" || cfg.AppID == "" {
		return nil, fmt.Errorf("discord token and app ID are required")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		session:  session,
		appID:    cfg.AppID,
		guildID:  cfg.GuildID,
		pipeline: cfg.Pipeline,
		logger:   logger,
	}, nil
}

// Run connects, registers the commands and blocks until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.pipeline.HandleInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	defer func() {
		if err := b.session.Close(); err != nil {
			b.logger.Warn("failed to close Discord connection", zap.Error(err))
		}
	}()

	// Use empty string for global commands, or a guild ID for testing
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.appID, b.guildID, routers.Commands()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	if b.guildID != "" {
		b.logger.Info("registered commands for guild", zap.String("guild_id", b.guildID))
	} else {
		b.logger.Info("registered global commands (may take up to 1 hour to propagate)")
	}
	b.logger.Info("bot is running", zap.Int("handlers", b.pipeline.HandlerCount()))

	<-ctx.Done()
	b.logger.Info("shutting down Discord connection")
	return nil
}
