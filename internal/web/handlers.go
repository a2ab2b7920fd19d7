package web

import (
	"errors"
	"net/http"

	"github.com/ghaggin/authgate/internal/backend"
	"github.com/ghaggin/authgate/internal/config"
	"github.com/ghaggin/authgate/internal/template"
	"go.uber.org/zap"
)

const (
	msgLoggedIn      = "Logged in successfully"
	msgRegistered    = "Account created, you can log in now"
	msgLoginFailed   = "Login failed, try again later"
	msgRegisterError = "Registration failed"
)

// data fills the fields every page shares from the current session.
func (s *Server) data(r *http.Request, title string) *template.Data {
	sess := s.store.Current()
	d := &template.Data{
		PageTitle:     title,
		Authenticated: sess.Authenticated(),
		Flash:         s.flash.PopFlash(r.Context()),
		LoginPath:     s.cfg.Guard.LoginPath,
	}
	d.Role, _ = sess.Role()
	if sess.Credentials != nil && sess.Credentials.User != nil {
		d.Username = sess.Credentials.User.Username
	}

	for _, route := range s.cfg.Routes {
		d.Links = append(d.Links, template.Link{Path: route.Path, Title: route.Title})
	}
	return d
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, tmpl string, d *template.Data) {
	if err := template.Render(w, r, status, tmpl, d); err != nil {
		s.log.Error("failed rendering", zap.String("template", tmpl), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", s.data(r, "home"))
}

func (s *Server) view(route config.Route) http.HandlerFunc {
	title := route.Title
	if title == "" {
		title = route.Path
	}

	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, "view.html", s.data(r, title))
	}
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", s.data(r, "login"))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	creds, err := s.backend.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		d := s.data(r, "login")
		status := http.StatusUnauthorized
		d.Error = backend.ErrAuthenticationFailed.Error()
		if !errors.Is(err, backend.ErrAuthenticationFailed) {
			s.log.Error("login call failed", zap.Error(err))
			status = http.StatusBadGateway
			d.Error = msgLoginFailed
		}
		s.render(w, r, status, "login.html", d)
		return
	}

	if err := s.store.Login(r.Context(), creds); err != nil {
		d := s.data(r, "login")
		d.Error = msgLoginFailed
		s.render(w, r, http.StatusInternalServerError, "login.html", d)
		return
	}

	s.flash.PutFlash(r.Context(), msgLoggedIn)
	http.Redirect(w, r, s.cfg.Guard.DefaultPath, http.StatusSeeOther)
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", s.data(r, "register"))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	_, err := s.backend.Register(r.Context(), backend.RegisterRequest{
		Username:  r.PostForm.Get("username"),
		Password:  r.PostForm.Get("password"),
		Email:     r.PostForm.Get("email"),
		FirstName: r.PostForm.Get("first_name"),
		LastName:  r.PostForm.Get("last_name"),
	})
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, backend.ErrRegistrationFailed) {
			s.log.Error("register call failed", zap.Error(err))
			status = http.StatusBadGateway
		}
		d := s.data(r, "register")
		d.Error = msgRegisterError
		s.render(w, r, status, "register.html", d)
		return
	}

	s.flash.PutFlash(r.Context(), msgRegistered)
	http.Redirect(w, r, s.cfg.Guard.LoginPath, http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Logout(r.Context()); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, s.cfg.Guard.LoginPath, http.StatusSeeOther)
}
