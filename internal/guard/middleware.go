package guard

import (
	"net/http"

	"github.com/ghaggin/authgate/internal/model"
	"go.uber.org/zap"
)

// Source yields the session to evaluate. *session.Store satisfies it.
type Source interface {
	Current() model.Session
}

type Options struct {
	Policy      Policy
	LoginPath   string
	DefaultPath string
	Log         *zap.Logger
}

// Require builds a middleware that evaluates the guard on every request and
// redirects instead of calling next when the verdict is not Allow.
func Require(src Source, allowed Roles, opts Options) func(http.Handler) http.Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := Decide(src.Current(), allowed, opts.Policy)

			switch v {
			case Allow:
				next.ServeHTTP(w, r)
				return
			case RedirectLogin:
				http.Redirect(w, r, opts.LoginPath, http.StatusSeeOther)
			default:
				http.Redirect(w, r, opts.DefaultPath, http.StatusSeeOther)
			}

			log.Debug("guard redirected",
				zap.String("path", r.URL.Path),
				zap.Stringer("verdict", v),
			)
		})
	}
}
