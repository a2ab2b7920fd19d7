// Package web serves the front end: public pages, the login and register
// forms, and the protected views behind the guard.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ghaggin/authgate/internal/backend"
	"github.com/ghaggin/authgate/internal/config"
	"github.com/ghaggin/authgate/internal/guard"
	"github.com/ghaggin/authgate/internal/middleware"
	"github.com/ghaggin/authgate/internal/model"
	"github.com/ghaggin/authgate/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(RegisterHooks),
)

// Backend is the part of the auth service the forms need.
type Backend interface {
	Login(ctx context.Context, username, password string) (model.Credentials, error)
	Register(ctx context.Context, req backend.RegisterRequest) (model.User, error)
}

type Server struct {
	log     *zap.Logger
	cfg     *config.Config
	store   *session.Store
	backend Backend
	flash   *middleware.SessionManager
	server  *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Store    *session.Store
	Backend  Backend
	Sessions *middleware.SessionManager
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:     p.Log,
		cfg:     p.Config,
		store:   p.Store,
		backend: p.Backend,
		flash:   p.Sessions,
	}

	p.Store.Subscribe(func(sess model.Session) {
		role, _ := sess.Role()
		s.log.Debug("session changed",
			zap.Bool("authenticated", sess.Authenticated()),
			zap.String("role", role),
		)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.Server.Port),
		Handler: s.routes(),
	}

	return s, nil
}

func (s *Server) routes() http.Handler {
	root := chi.NewRouter()
	root.Use(s.flash.Wrap)

	opts := guard.Options{
		Policy:      guard.Policy{PermitMissingRole: s.cfg.Guard.PermitMissingRole},
		LoginPath:   s.cfg.Guard.LoginPath,
		DefaultPath: s.cfg.Guard.DefaultPath,
		Log:         s.log,
	}

	// Auth
	root.Group(func(r chi.Router) {
		for _, route := range s.cfg.Routes {
			r.With(guard.Require(s.store, guard.Roles(route.AllowedRoles), opts)).
				Get(route.Path, s.view(route))
		}
	})

	// No Auth
	root.Group(func(r chi.Router) {
		r.Get("/", s.home)
		r.Get(s.cfg.Guard.LoginPath, s.loginForm)
		r.Post(s.cfg.Guard.LoginPath, s.login)
		r.Get("/register", s.registerForm)
		r.Post("/register", s.register)
		r.Post("/logout", s.logout)
	})

	return root
}

func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("listening", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error running server", zap.Error(err))
		}
	}()
	return nil
}
