package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

type stubAuthenticator struct {
	tokens map[string]domain.Identity
	got    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (domain.Identity, error) {
	s.got = token
	id, ok := s.tokens[token]
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

func newAuthenticator() *stubAuthenticator {
	return &stubAuthenticator{tokens: map[string]domain.Identity{
		"good": {UserID: "u1", Username: "alice", Name: "Alice", Role: domain.RoleAdmin, SessionID: "s1"},
	}}
}

func TestAuthMiddleware_BearerToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(newAuthenticator())(func(c echo.Context) error {
		called = true
		if c.Get(KeyUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(KeyRole) != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		if c.Get(KeySessionID) != "s1" {
			t.Fatalf("session_id not set")
		}
		if id, ok := c.Get(KeyIdentity).(domain.Identity); !ok || id.UserID != "u1" {
			t.Fatalf("identity not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SessionCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authn := newAuthenticator()
	handler := Auth(authn)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if authn.got != "good" {
		t.Fatalf("cookie token not used, got %q", authn.got)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]func(*http.Request){
		"missing":        func(*http.Request) {},
		"bad scheme":     func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
		"unknown token":  func(r *http.Request) { r.Header.Set("Authorization", "Bearer revoked") },
		"empty cookie":   func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: ""}) },
		"revoked cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "revoked"}) },
	}

	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			setup(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := Auth(newAuthenticator())(func(c echo.Context) error {
				t.Fatalf("should not reach next")
				return nil
			})
			if err := handler(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
