// Package backend talks to the authentication REST service that issues
// token pairs.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ghaggin/authgate/internal/config"
	"github.com/ghaggin/authgate/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrRegistrationFailed   = errors.New("registration rejected")
	ErrMalformedResponse    = errors.New("malformed backend response")
)

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Params struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

func New(p Params) *Client {
	return &Client{
		baseURL: strings.TrimRight(p.Config.Backend.URL, "/"),
		http:    &http.Client{Timeout: p.Config.Backend.Timeout},
		log:     p.Log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *model.User `json:"user"`
}

// Login exchanges a username and password for credentials. A rejection by
// the backend is ErrAuthenticationFailed.
func (c *Client) Login(ctx context.Context, username, password string) (model.Credentials, error) {
	var res loginResponse
	status, err := c.post(ctx, "/login/", loginRequest{Username: username, Password: password}, &res)
	if err != nil {
		return model.Credentials{}, err
	}
	if status < 200 || status > 299 {
		c.log.Info("login rejected", zap.String("username", username), zap.Int("status", status))
		return model.Credentials{}, ErrAuthenticationFailed
	}

	return res.credentials()
}

// credentials checks the payload at the boundary so the session never sees a
// half filled token pair.
func (r loginResponse) credentials() (model.Credentials, error) {
	if r.Access == "" {
		return model.Credentials{}, fmt.Errorf("%w: missing access", ErrMalformedResponse)
	}
	if r.Refresh == "" {
		return model.Credentials{}, fmt.Errorf("%w: missing refresh", ErrMalformedResponse)
	}

	c := model.Credentials{
		Access:  r.Access,
		Refresh: r.Refresh,
		User:    r.User,
	}
	if r.User != nil {
		c.Role = r.User.Role
	}

	return c, nil
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	var u model.User
	status, err := c.post(ctx, "/register/", req, &u)
	if err != nil {
		return model.User{}, err
	}
	if status < 200 || status > 299 {
		c.log.Info("registration rejected", zap.String("username", req.Username), zap.Int("status", status))
		return model.User{}, ErrRegistrationFailed
	}

	return u, nil
}

// post sends body as JSON and decodes a 2xx response into out. Other
// statuses are returned without decoding.
func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return resp.StatusCode, nil
}
