package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/profile-onboarding/internal/config"
	"github.com/KirkDiggler/profile-onboarding/internal/discord"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
	"github.com/KirkDiggler/profile-onboarding/internal/httpapi"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	"github.com/KirkDiggler/profile-onboarding/internal/logging"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.MustNew(reg)

	profileRepo, storeCloser, err := openProfileStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storeCloser.Close(); err != nil {
			logger.Warn("failed to close profile store", zap.Error(err))
		}
	}()

	if err := seedProfiles(ctx, profileRepo, cfg.Store, logger); err != nil {
		return err
	}

	provider := services.NewProvider(&services.ProviderConfig{
		ProfileRepository: profileRepo,
		IncludeInterests:  cfg.Onboarding.CommitInterests,
		Metrics:           m,
		Logger:            logger,
	})

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return serveMetrics(ctx, cfg.Metrics.Addr, reg, logger)
		})
	}

	if cfg.HTTP.Enabled {
		verifier, err := identity.NewTokenVerifier(cfg.HTTP.JWTSecret, cfg.HTTP.JWTIssuer, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to create token verifier: %w", err)
		}
		server := httpapi.NewServer(&httpapi.ServerConfig{
			Addr:       cfg.HTTP.Addr,
			Onboarding: provider.OnboardingService,
			Settings:   provider.SettingsService,
			Verifier:   verifier,
			Logger:     logger.Named("http"),
		})
		g.Go(func() error {
			return server.Run(ctx)
		})
	}

	if cfg.Discord.Enabled {
		pipeline := discord.SetupPipeline(&discord.PipelineConfig{
			Provider:     provider,
			Metrics:      m,
			Logger:       logger.Named("discord"),
			AssetBaseURL: cfg.Discord.AssetBaseURL,
		})
		bot, err := discord.NewBot(&discord.BotConfig{
			Token:    cfg.Discord.Token,
			AppID:    cfg.Discord.AppID,
			GuildID:  cfg.Discord.GuildID,
			Pipeline: pipeline,
			Logger:   logger.Named("discord"),
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			return bot.Run(ctx)
		})
	}

	logger.Info("profile onboarding running",
		zap.String("store", cfg.Store.Backend),
		zap.Bool("discord", cfg.Discord.Enabled),
		zap.Bool("http", cfg.HTTP.Enabled),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}

// openProfileStore selects the profile repository. The returned closer
// releases the backing connection.
func openProfileStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (profiles.Repository, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("using Redis profile store", zap.String("addr", opts.Addr))
		return profiles.NewRedis(client), client, nil

	case config.BackendSQLite:
		repo, err := profiles.OpenSQLite(cfg.SQLitePath, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		logger.Info("using SQLite profile store", zap.String("path", cfg.SQLitePath))
		return repo, repo, nil

	default:
		logger.Warn("using in-memory profile store; records are lost on exit")
		return profiles.NewInMemoryRepository(nil), closerFunc(func() error { return nil }), nil
	}
}

// seedProfiles stands in for signup on local runs, where nothing else
// creates the records onboarding merges into
func seedProfiles(ctx context.Context, repo profiles.Repository, cfg config.StoreConfig, logger *zap.Logger) error {
	seeds, err := cfg.Seeds()
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		if cfg.Backend == config.BackendMemory {
			logger.Warn("in-memory profile store has no records; set STORE_SEED_PROFILES or every commit fails with not_found")
		}
		return nil
	}

	records := make([]*profile.Record, 0, len(seeds))
	for _, seed := range seeds {
		records = append(records, &profile.Record{ID: seed.ID, FirstName: seed.FirstName})
	}
	created, err := profiles.Seed(ctx, repo, records...)
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}
	logger.Info("seeded profile store", zap.Int("created", created), zap.Int("requested", len(records)))
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
