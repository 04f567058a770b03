package onboarding

import (
	"sync"
	"time"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// Session ties one engine to the principal that owns it. It lives only in
// process memory; nothing in it is persisted until the commit.
type Session struct {
	ID        string
	OwnerID   string
	Engine    *Engine
	CreatedAt time.Time

	mu            sync.Mutex
	greeting      string
	greetingOnce  sync.Once
	greetingReady chan struct{}
	committing    bool
	committed     bool
	released      bool
	releaseHook   func()
}

// NewSession creates a session around an engine
func NewSession(id, ownerID string, engine *Engine, createdAt time.Time) *Session {
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		Engine:    engine,
		CreatedAt: createdAt,

		greetingReady: make(chan struct{}),
	}
}

// Greeting returns the welcome greeting, empty until the lookup resolves
func (s *Session) Greeting() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.greeting
}

// SetGreeting stores the result of the welcome lookup
func (s *Session) SetGreeting(greeting string) {
	s.mu.Lock()
	s.greeting = greeting
	s.mu.Unlock()

	s.greetingOnce.Do(func() { close(s.greetingReady) })
}

// GreetingReady is closed once the welcome lookup has resolved, whether or
// not it found a name
func (s *Session) GreetingReady() <-chan struct{} {
	return s.greetingReady
}

// BeginCommit claims the right to commit. Only one commit may be in flight
// and a session commits at most once.
func (s *Session) BeginCommit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.committed:
		return apperr.FailedPrecondition("onboarding already committed")
	case s.committing:
		return apperr.FailedPrecondition("commit already in progress")
	case s.released:
		return apperr.FailedPrecondition("onboarding session is closed")
	}
	s.committing = true
	return nil
}

// EndCommit releases the claim taken by BeginCommit
func (s *Session) EndCommit(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committing = false
	if success {
		s.committed = true
	}
}

// Committed reports whether the commit succeeded
func (s *Session) Committed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// OnRelease registers cleanup to run once when the session is released
func (s *Session) OnRelease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseHook = fn
}

// Release closes the engine and runs the release hook. Later calls do nothing.
func (s *Session) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	hook := s.releaseHook
	s.releaseHook = nil
	s.mu.Unlock()

	if s.Engine != nil {
		s.Engine.Close()
	}
	if hook != nil {
		hook()
	}
}
