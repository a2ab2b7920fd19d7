package session

import (
	"context"
	"errors"

	"github.com/ghaggin/authgate/internal/model"
	"github.com/ghaggin/authgate/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Hydrate restores the session from storage. It may run once, before the
// first guard evaluation. Only when both tokens are present does the store
// become authenticated; a lone token is treated as logged out. The role is
// not persisted, so a hydrated session carries none.
//
// Observers are not notified.
func (s *Store) Hydrate(ctx context.Context) error {
	s.tx.Lock()
	defer s.tx.Unlock()

	if s.hydrated {
		return ErrAlreadyHydrated
	}
	s.hydrated = true

	access, err := s.read(ctx, AccessKey)
	if err != nil {
		return err
	}
	refresh, err := s.read(ctx, RefreshKey)
	if err != nil {
		return err
	}

	if access == "" || refresh == "" {
		if access != "" || refresh != "" {
			s.log.Warn("partial session in storage, starting logged out")
		}
		return nil
	}

	s.mu.Lock()
	s.current = model.Session{Credentials: &model.Credentials{
		Access:  access,
		Refresh: refresh,
	}}
	s.mu.Unlock()

	s.log.Info("session restored from storage")
	return nil
}

// read treats a missing key as empty.
func (s *Store) read(ctx context.Context, key string) (string, error) {
	v, err := s.storage.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// RegisterHooks hydrates the store when the application starts. A storage
// error only logs; the shell then starts logged out.
func RegisterHooks(lc fx.Lifecycle, s *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.Hydrate(ctx); err != nil {
				s.log.Warn("failed hydrating session", zap.Error(err))
			}
			return nil
		},
	})
}
