package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ghaggin/authgate/internal/backend"
	"github.com/ghaggin/authgate/internal/config"
	"github.com/ghaggin/authgate/internal/middleware"
	"github.com/ghaggin/authgate/internal/model"
	"github.com/ghaggin/authgate/internal/session"
	"github.com/ghaggin/authgate/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeBackend struct{}

func (fakeBackend) Login(_ context.Context, username, password string) (model.Credentials, error) {
	if password != "secret" {
		return model.Credentials{}, backend.ErrAuthenticationFailed
	}
	c := model.Credentials{Access: "a", Refresh: "r", User: &model.User{Username: username}}
	if username == "ana" {
		c.Role = "admin"
		c.User.Role = "admin"
	}
	return c, nil
}

func (fakeBackend) Register(_ context.Context, req backend.RegisterRequest) (model.User, error) {
	if req.Username == "taken" {
		return model.User{}, backend.ErrRegistrationFailed
	}
	return model.User{Username: req.Username}, nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *session.Store
	storage storage.Storage
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, configure ...func(*config.Config)) *testServer {
	t.Helper()
	require := require.New(t)

	cfg := config.Default()
	cfg.Routes = append(cfg.Routes, config.Route{Path: "/editor", Title: "Editor", AllowedRoles: []string{"editor"}})
	for _, fn := range configure {
		fn(cfg)
	}

	log := zaptest.NewLogger(t)
	st := storage.NewFile(afero.NewMemMapFs(), "/storage.json")
	store := session.NewStore(session.Params{Storage: st, Log: log})
	require.NoError(store.Hydrate(context.Background()))

	sm, err := middleware.NewSessionManager()
	require.NoError(err)

	s, err := New(Params{
		Log:      log,
		Config:   cfg,
		Store:    store,
		Backend:  fakeBackend{},
		Sessions: sm,
	})
	require.NoError(err)

	return &testServer{t: t, handler: s.server.Handler, store: store, storage: st}
}

func (ts *testServer) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	ts.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, c := range ts.cookies {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	if c := rr.Result().Cookies(); len(c) > 0 {
		ts.cookies = c
	}
	return rr
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, to string) {
	t.Helper()
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, to, rr.Result().Header.Get("Location"))
}

func Test_Scenario(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ts := newTestServer(t)

	assertRedirect(t, ts.do("GET", "/dashboard", nil), "/login")

	rr := ts.do("POST", "/login", url.Values{"username": {"ana"}, "password": {"secret"}})
	assertRedirect(t, rr, "/dashboard")
	role, ok := ts.store.Current().Role()
	require.True(ok)
	assert.Equal("admin", role)

	rr = ts.do("GET", "/dashboard", nil)
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), msgLoggedIn)

	rr = ts.do("GET", "/admin-dashboard", nil)
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), "Signed in as ana (admin)")

	assertRedirect(t, ts.do("GET", "/editor", nil), "/dashboard")

	assertRedirect(t, ts.do("POST", "/logout", nil), "/login")
	assert.False(ts.store.Current().Authenticated())
	_, err := ts.storage.Get(context.Background(), session.AccessKey)
	assert.ErrorIs(err, storage.ErrNotFound)

	for _, p := range []string{"/dashboard", "/admin-dashboard", "/roles", "/editor"} {
		assertRedirect(t, ts.do("GET", p, nil), "/login")
	}
}

func Test_LoginRejected(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)

	rr := ts.do("POST", "/login", url.Values{"username": {"ana"}, "password": {"nope"}})
	assert.Equal(http.StatusUnauthorized, rr.Code)
	assert.Contains(rr.Body.String(), backend.ErrAuthenticationFailed.Error())
	assert.False(ts.store.Current().Authenticated())
}

func Test_RoleLessSessionPassesRestrictedRoute(t *testing.T) {
	ts := newTestServer(t)

	assertRedirect(t, ts.do("POST", "/login", url.Values{"username": {"bob"}, "password": {"secret"}}), "/dashboard")
	assert.Equal(t, http.StatusOK, ts.do("GET", "/admin-dashboard", nil).Code)
}

func Test_Register(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)

	rr := ts.do("POST", "/register", url.Values{"username": {"carla"}, "password": {"pw"}, "email": {"c@example.com"}})
	assertRedirect(t, rr, "/login")

	rr = ts.do("GET", "/login", nil)
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), msgRegistered)

	rr = ts.do("POST", "/register", url.Values{"username": {"taken"}, "password": {"pw"}})
	assert.Equal(http.StatusBadRequest, rr.Code)
	assert.Contains(rr.Body.String(), msgRegisterError)
}

func Test_HomeNavbarFollowsSession(t *testing.T) {
	assert := assert.New(t)
	ts := newTestServer(t)

	rr := ts.do("GET", "/", nil)
	assert.Equal(http.StatusOK, rr.Code)
	assert.Contains(rr.Body.String(), `href="/register"`)

	require.NoError(t, ts.store.Login(context.Background(), model.Credentials{Access: "a", Refresh: "r"}))

	rr = ts.do("GET", "/", nil)
	assert.Contains(rr.Body.String(), `action="/logout"`)
	assert.NotContains(rr.Body.String(), `href="/register"`)
}

func Test_CustomLoginPath(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Guard.LoginPath = "/signin"
	})

	assertRedirect(t, ts.do("GET", "/dashboard", nil), "/signin")

	rr := ts.do("GET", "/signin", nil)
	require.Equal(http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(body, `action="/signin"`)
	assert.Contains(body, `href="/signin"`)
	assert.NotContains(body, `"/login"`)

	rr = ts.do("POST", "/signin", url.Values{"username": {"bob"}, "password": {"wrong"}})
	assert.Equal(http.StatusUnauthorized, rr.Code)
	assert.Contains(rr.Body.String(), `action="/signin"`)

	assertRedirect(t, ts.do("POST", "/signin", url.Values{"username": {"ana"}, "password": {"secret"}}), "/dashboard")
	assert.True(ts.store.Current().Authenticated())

	assertRedirect(t, ts.do("POST", "/logout", nil), "/signin")
}
