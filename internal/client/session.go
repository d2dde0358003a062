package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// Session is the authentication context handed to everything that needs the
// current user. It holds no state besides the user; the token itself lives in
// the client's cookie jar.
type Session struct {
	c *Client

	mu   sync.RWMutex
	user *domain.User
}

func NewSession(c *Client) *Session {
	return &Session{c: c}
}

// Init restores the session from the cookie jar. A 401 is not an error: it
// leaves the session signed out.
func (s *Session) Init(ctx context.Context) (*domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	err := s.c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		s.set(nil)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.set(&out.User)
	return s.User(), nil
}

// Login authenticates and stores the returned user.
func (s *Session) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &ValidationError{Field: "username", Message: "username is required"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "password is required"}
	}

	var out struct {
		User domain.User `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	if err := s.c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	s.set(&out.User)
	s.c.log.Info().Str("username", out.User.Username).Str("role", out.User.Role).Msg("logged in")
	return s.User(), nil
}

// Logout ends the session on the server and clears local state even when the
// server call fails. It returns the path to navigate to.
func (s *Session) Logout(ctx context.Context) (string, error) {
	err := s.c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	s.set(nil)
	return PathLogin, err
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Authenticated() bool { return s.User() != nil }

func (s *Session) set(u *domain.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
