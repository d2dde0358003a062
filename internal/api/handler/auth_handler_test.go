package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/middleware"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, username, password string) (string, *domain.User, error)
	logoutFn func(ctx context.Context, sessionID string) error
	meFn     func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	return s.logoutFn(ctx, sessionID)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func (s *stubAuthService) Authenticate(context.Context, string) (domain.Identity, error) {
	return domain.Identity{}, domain.ErrUnauthenticated
}

// newEcho returns an Echo with the production validator installed.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// withIdentity stores who in c the way the Auth middleware does.
func withIdentity(c echo.Context, who domain.Identity) {
	c.Set(middleware.KeyIdentity, who)
	c.Set(middleware.KeyRole, who.Role)
	c.Set(middleware.KeyUserID, who.UserID)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestAuthHandler_Login_SetsSessionCookie(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			if username != "budi" || password != "rahasia" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "tok-123", &domain.User{ID: "u1", Username: "budi", Role: domain.RoleAM}, nil
		},
	}
	handler := NewAuthHandler(stub, CookieOptions{Secure: true, TTL: time.Hour})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"budi","password":"rahasia"}`), rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != middleware.SessionCookie || ck.Value != "tok-123" || !ck.HttpOnly || !ck.Secure || ck.MaxAge != 3600 {
		t.Fatalf("unexpected cookie: %+v", ck)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "budi" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if resp["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", resp["message"])
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			t.Fatal("service must not be called")
			return "", nil, nil
		},
	}, CookieOptions{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"budi"}`), httptest.NewRecorder())

	err := handler.Login(c)
	if code := httpCode(t, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}, CookieOptions{})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"budi","password":"x"}`), rec)

	err := handler.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no cookie expected on failure")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	e := newEcho()
	var revoked string
	handler := NewAuthHandler(&stubAuthService{
		logoutFn: func(_ context.Context, sid string) error {
			revoked = sid
			return nil
		},
	}, CookieOptions{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), rec)
	withIdentity(c, domain.Identity{UserID: "u1", Role: domain.RoleAdmin, SessionID: "sid-9"})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "sid-9" {
		t.Fatalf("expected session sid-9 revoked, got %q", revoked)
	}
	ck := rec.Result().Cookies()
	if len(ck) != 1 || ck[0].Value != "" || ck[0].MaxAge >= 0 {
		t.Fatalf("expected a deleting cookie, got %+v", ck)
	}
}

func TestAuthHandler_Me_RequiresIdentity(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, CookieOptions{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), httptest.NewRecorder())
	if code := httpCode(t, handler.Me(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{
		meFn: func(_ context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "root", Role: domain.RoleSuperAdmin}, nil
		},
	}, CookieOptions{})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil), rec)
	withIdentity(c, domain.Identity{UserID: "u7", Role: domain.RoleSuperAdmin})

	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"id":"u7"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
