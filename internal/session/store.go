// Package session owns the authentication state of the shell: the current
// Session value, its durable copy in storage, and the login and logout
// transitions that change both.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ghaggin/authgate/internal/model"
	"github.com/ghaggin/authgate/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Storage keys for the two tokens. They are always written and removed
// together.
const (
	AccessKey  = "access"
	RefreshKey = "refresh"
)

var (
	ErrInvalidCredentials = errors.New("credentials need both an access and a refresh token")
	ErrStorage            = errors.New("session storage failed")
	ErrAlreadyHydrated    = errors.New("session already hydrated")
)

// Store is the single source of the current Session. Login and Logout are
// serialized; observers are called synchronously after storage has been
// updated and must not call Login or Logout themselves.
type Store struct {
	storage storage.Storage
	log     *zap.Logger

	// tx serializes transitions and hydration.
	tx       sync.Mutex
	hydrated bool

	mu          sync.RWMutex
	current     model.Session
	subscribers map[uuid.UUID]func(model.Session)
}

type Params struct {
	fx.In

	Storage storage.Storage
	Log     *zap.Logger
}

func NewStore(p Params) *Store {
	return &Store{
		storage:     p.Storage,
		log:         p.Log,
		subscribers: make(map[uuid.UUID]func(model.Session)),
	}
}

func (s *Store) Current() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn to receive the new Session after every login and
// logout. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(model.Session)) func() {
	id := uuid.New()

	s.mu.Lock()
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Login persists both tokens and then makes c the current session. If the
// storage write fails nothing changes and no observer is called.
func (s *Store) Login(ctx context.Context, c model.Credentials) error {
	if c.Access == "" || c.Refresh == "" {
		return ErrInvalidCredentials
	}

	s.tx.Lock()
	defer s.tx.Unlock()

	err := s.storage.Put(ctx, map[string]string{
		AccessKey:  c.Access,
		RefreshKey: c.Refresh,
	})
	if err != nil {
		s.log.Error("failed persisting session", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.set(model.Session{Credentials: &c})

	role, _ := s.Current().Role()
	s.log.Info("logged in", zap.String("role", role))
	return nil
}

// Logout removes both tokens and clears the current session. Logging out
// while logged out is fine and still notifies observers.
func (s *Store) Logout(ctx context.Context) error {
	s.tx.Lock()
	defer s.tx.Unlock()

	if err := s.storage.Delete(ctx, AccessKey, RefreshKey); err != nil {
		s.log.Error("failed removing session", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.set(model.Session{})

	s.log.Info("logged out")
	return nil
}

// set installs next and delivers it to every subscriber. Callers hold tx.
func (s *Store) set(next model.Session) {
	s.mu.Lock()
	s.current = next
	subs := make([]func(model.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}
