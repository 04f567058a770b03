package identity

import (
	"sync"
)

// Principal is the authenticated user
type Principal struct {
	ID   string
	Name string
}

// Listener is called whenever the current principal changes; ok is false
// once nobody is signed in
type Listener func(p Principal, ok bool)

// Provider supplies the current principal and change notifications
type Provider interface {
	Current() (Principal, bool)
	Subscribe(l Listener) (unsubscribe func())
}

// Static is a Provider whose principal is set explicitly. Shells create one
// per request or interaction from the identity they already verified.
type Static struct {
	mu        sync.Mutex
	current   *Principal
	listeners map[int]Listener
	nextID    int
}

var _ Provider = (*Static)(nil)

// NewStatic returns a provider signed in as p
func NewStatic(p Principal) *Static {
	return &Static{
		current:   &p,
		listeners: make(map[int]Listener),
	}
}

// NewSignedOut returns a provider with nobody signed in
func NewSignedOut() *Static {
	return &Static{listeners: make(map[int]Listener)}
}

// Current returns the signed-in principal
func (s *Static) Current() (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Principal{}, false
	}
	return *s.current, true
}

// Subscribe registers l until the returned function is called
func (s *Static) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignIn replaces the principal and notifies listeners
func (s *Static) SignIn(p Principal) {
	s.mu.Lock()
	s.current = &p
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(p, true)
	}
}

// SignOut clears the principal and notifies listeners
func (s *Static) SignOut() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current = nil
	listeners := s.snapshotLocked()
	s.mu.Unlock()

	for _, l := range listeners {
		l(Principal{}, false)
	}
}

func (s *Static) snapshotLocked() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}
