package onboarding

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
	"github.com/KirkDiggler/profile-onboarding/internal/identity"
	"github.com/KirkDiggler/profile-onboarding/internal/metrics"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/profiles"
	"github.com/KirkDiggler/profile-onboarding/internal/repositories/sessions"
	"github.com/KirkDiggler/profile-onboarding/internal/uuid"
)

// Reasons a session leaves memory
const (
	EndReasonCommitted       = "committed"
	EndReasonAbandoned       = "abandoned"
	EndReasonUnauthenticated = "unauthenticated"
)

// Service runs onboarding sessions
type Service interface {
	// Start returns the caller's session, creating it when none is live.
	// resumed is true when an existing live session was returned.
	Start(ctx context.Context, input *StartInput) (session *onboarding.Session, resumed bool, err error)

	// Get retrieves a live session by ID
	Get(ctx context.Context, sessionID string) (*onboarding.Session, error)

	// GetByOwner retrieves the owner's live session
	GetByOwner(ctx context.Context, ownerID string) (*onboarding.Session, error)

	// Commit merges the session's draft into the profile store. Allowed only
	// on the terminal step and at most once.
	Commit(ctx context.Context, sessionID string) error

	// Abandon discards the session without writing anything
	Abandon(ctx context.Context, sessionID string) error
}

// StartInput contains data for starting a session
type StartInput struct {
	Identity identity.Provider // Required
	// OnTransition is registered on the engine when a new session is created
	OnTransition onboarding.TransitionFunc
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	ProfileRepository profiles.Repository // Required
	SessionRepository sessions.Repository // Optional, in-memory if nil
	Registry          *onboarding.Registry
	Clock             onboarding.Clock
	UUIDGenerator     uuid.Generator
	IncludeInterests  bool
	Metrics           *metrics.Metrics
	Logger            *zap.Logger
}

type service struct {
	profiles      profiles.Repository
	sessions      sessions.Repository
	commit        *CommitProtocol
	registry      *onboarding.Registry
	clock         onboarding.Clock
	uuidGenerator uuid.Generator
	metrics       *metrics.Metrics
	logger        *zap.Logger

	// startMu keeps two concurrent Starts for one owner from racing
	startMu sync.Mutex

	mu         sync.Mutex
	identities map[string]identity.Provider
}

// NewService creates a new onboarding service
func NewService(cfg *ServiceConfig) Service {
	if cfg.ProfileRepository == nil {
		panic("profile repository is required")
	}

	svc := &service{
		profiles:      cfg.ProfileRepository,
		sessions:      cfg.SessionRepository,
		registry:      cfg.Registry,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		identities:    make(map[string]identity.Provider),
	}
	if svc.sessions == nil {
		svc.sessions = sessions.NewInMemoryRepository()
	}
	if svc.registry == nil {
		svc.registry = onboarding.DefaultRegistry()
	}
	if svc.clock == nil {
		svc.clock = onboarding.RealClock{}
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	svc.commit = NewCommitProtocol(&CommitConfig{
		Repository:       cfg.ProfileRepository,
		IncludeInterests: cfg.IncludeInterests,
		Metrics:          cfg.Metrics,
		Logger:           svc.logger,
	})

	return svc
}

// Start returns the caller's session, creating it when none is live
func (s *service) Start(ctx context.Context, input *StartInput) (*onboarding.Session, bool, error) {
	if input == nil || input.Identity == nil {
		return nil, false, apperr.InvalidArgument("identity provider is required")
	}
	principal, ok := input.Identity.Current()
	if !ok || principal.ID == "" {
		return nil, false, apperr.Unauthenticated("sign in to start onboarding")
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	existing, err := s.sessions.GetByOwner(ctx, principal.ID)
	if err == nil {
		return existing, true, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, false, apperr.Wrap(err, "failed to look up session")
	}

	engine, err := onboarding.NewEngine(&onboarding.EngineConfig{
		Registry: s.registry,
		Clock:    s.clock,
	})
	if err != nil {
		return nil, false, apperr.Wrap(err, "failed to create engine")
	}

	session := onboarding.NewSession(s.uuidGenerator.New(), principal.ID, engine, time.Now().UTC())
	logger := s.logger.With(zap.String("session_id", session.ID), zap.String("owner_id", principal.ID))

	engine.OnTransition(func(t onboarding.Transition) {
		s.metrics.ObserveTransition(string(t.From), string(t.To), string(t.Trigger))
		logger.Debug("step transition",
			zap.String("from", string(t.From)),
			zap.String("to", string(t.To)),
			zap.String("trigger", string(t.Trigger)),
		)
	})
	if input.OnTransition != nil {
		engine.OnTransition(input.OnTransition)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		engine.Close()
		return nil, false, apperr.Wrap(err, "failed to store session").
			WithMeta("session_id", session.ID)
	}

	s.mu.Lock()
	s.identities[session.ID] = input.Identity
	s.mu.Unlock()

	unsubscribe := input.Identity.Subscribe(func(p identity.Principal, ok bool) {
		if ok && p.ID == principal.ID {
			return
		}
		logger.Info("identity changed, ending onboarding session")
		s.end(context.WithoutCancel(ctx), session, EndReasonUnauthenticated)
	})
	session.OnRelease(func() {
		unsubscribe()
		s.mu.Lock()
		delete(s.identities, session.ID)
		s.mu.Unlock()
	})

	s.metrics.SessionStarted()
	logger.Info("onboarding session started")

	go s.lookupGreeting(context.WithoutCancel(ctx), session, logger)

	return session, false, nil
}

// lookupGreeting reads the first name for the welcome step. It races the
// auto-advance timer and never blocks it; failures leave the greeting empty.
func (s *service) lookupGreeting(ctx context.Context, session *onboarding.Session, logger *zap.Logger) {
	record, err := s.profiles.Get(ctx, session.OwnerID)
	if err != nil {
		s.metrics.GreetingLookupFailed()
		logger.Debug("welcome lookup failed", zap.Error(err))
		session.SetGreeting("")
		return
	}
	session.SetGreeting(Greeting(record.FirstName))
}

// Greeting renders the welcome text for a first name
func Greeting(firstName string) string {
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return ""
	}
	return "Welcome, " + firstName + "!"
}

// Get retrieves a live session by ID
func (s *service) Get(ctx context.Context, sessionID string) (*onboarding.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.InvalidArgument("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get session '%s'", sessionID).
			WithMeta("session_id", sessionID)
	}
	return session, nil
}

// GetByOwner retrieves the owner's live session
func (s *service) GetByOwner(ctx context.Context, ownerID string) (*onboarding.Session, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	session, err := s.sessions.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to get session for '%s'", ownerID).
			WithMeta("owner_id", ownerID)
	}
	return session, nil
}

// Commit merges the session's draft into the profile store
func (s *service) Commit(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := session.BeginCommit(); err != nil {
		return err
	}
	committed := false
	defer func() { session.EndCommit(committed) }()

	draft, err := session.Engine.Freeze()
	if err != nil {
		return apperr.Wrap(err, "failed to begin commit").WithMeta("session_id", sessionID)
	}
	defer func() {
		if !committed {
			session.Engine.Thaw()
		}
	}()

	s.mu.Lock()
	provider := s.identities[session.ID]
	s.mu.Unlock()

	principalID := ""
	if provider != nil {
		if p, ok := provider.Current(); ok && p.ID == session.OwnerID {
			principalID = p.ID
		}
	}

	if err := s.commit.Commit(ctx, principalID, draft); err != nil {
		return apperr.Wrap(err, "onboarding commit failed").WithMeta("session_id", sessionID)
	}
	committed = true

	if err := session.Engine.Complete(); err != nil {
		// the session was released while the write was in flight
		s.logger.Warn("engine closed before commit returned",
			zap.String("session_id", sessionID), zap.Error(err))
	}
	s.end(ctx, session, EndReasonCommitted)
	return nil
}

// Abandon discards the session without writing anything
func (s *service) Abandon(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.end(ctx, session, EndReasonAbandoned)
	return nil
}

// end releases the session and drops it from the store. Safe to call twice;
// only the call that removes the session counts it.
func (s *service) end(ctx context.Context, session *onboarding.Session, reason string) {
	session.Release()

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		if !apperr.IsNotFound(err) {
			s.logger.Warn("failed to delete session", zap.String("session_id", session.ID), zap.Error(err))
		}
		return
	}

	s.metrics.SessionEnded(reason)
	s.logger.Info("onboarding session ended",
		zap.String("session_id", session.ID),
		zap.String("reason", reason),
	)
}
