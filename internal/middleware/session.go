package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
)

const (
	flashKey = "flash"
)

// SessionManager carries one-shot flash messages between a redirect and the
// page it lands on. Authentication state does not live here.
type SessionManager struct {
	impl *scs.SessionManager
}

func NewSessionManager() (*SessionManager, error) {
	sm := &SessionManager{}
	sm.impl = scs.New()
	sm.impl.Lifetime = time.Minute * 3
	sm.impl.Cookie.Name = "authgate_flash"
	sm.impl.Cookie.SameSite = http.SameSiteLaxMode

	return sm, nil
}

func (s *SessionManager) Wrap(next http.Handler) http.Handler {
	return s.impl.LoadAndSave(next)
}

func (s *SessionManager) PutFlash(ctx context.Context, msg string) {
	s.impl.Put(ctx, flashKey, msg)
}

// PopFlash returns the pending flash message, if any, and clears it.
func (s *SessionManager) PopFlash(ctx context.Context) string {
	return s.impl.PopString(ctx, flashKey)
}
