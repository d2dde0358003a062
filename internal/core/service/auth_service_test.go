package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

func userWithPassword(t *testing.T, id, username, password, role string, active bool) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		Name:         "User " + username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo(userWithPassword(t, "u1", "carol", "s3cret", domain.RoleAdmin, true))
	sessions := newStubSessions()
	svc := NewAuthService(repo, sessions, "secret", time.Hour)

	token, user, err := svc.Login(context.Background(), " carol ", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != domain.RoleAdmin || claims["sub"] != "u1" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	sid, _ := claims["sid"].(string)
	if sessions.live[sid] != "u1" {
		t.Fatalf("session %q not stored: %v", sid, sessions.live)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	repo := newStubUserRepo(
		userWithPassword(t, "u1", "dave", "goodpass", domain.RoleAM, true),
		userWithPassword(t, "u2", "erin", "goodpass", domain.RoleAM, false),
	)
	svc := NewAuthService(repo, newStubSessions(), "secret", time.Hour)
	ctx := context.Background()

	cases := []struct {
		name, user, pass string
		want             error
	}{
		{"empty", "", "", domain.ErrInvalidCredentials},
		{"bad password", "dave", "badpass", domain.ErrInvalidCredentials},
		{"unknown user", "ghost", "pass", domain.ErrInvalidCredentials},
		{"inactive", "erin", "goodpass", domain.ErrInactiveUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tc.user, tc.pass); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	repo := newStubUserRepo(userWithPassword(t, "u7", "budi", "pw", domain.RoleAM, true))
	svc := NewAuthService(repo, newStubSessions(), "secret", time.Hour)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "budi", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != "u7" || id.Role != domain.RoleAM || id.Name != "User budi" || id.SessionID == "" {
		t.Fatalf("unexpected identity: %+v", id)
	}

	if err := svc.Logout(ctx, id.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
}

func TestAuthService_Authenticate_RejectsBadTokens(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), newStubSessions(), "secret", time.Hour)
	ctx := context.Background()

	if _, err := svc.Authenticate(ctx, "not-a-jwt"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "role": domain.RoleAdmin, "sid": "s1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := other.SignedString([]byte("wrong-secret"))
	if _, err := svc.Authenticate(ctx, signed); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for foreign signature, got %v", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1", "role": domain.RoleAdmin, "sid": "s1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, _ = expired.SignedString([]byte("secret"))
	if _, err := svc.Authenticate(ctx, signed); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo(
		userWithPassword(t, "u1", "a", "pw", domain.RoleAdmin, true),
		userWithPassword(t, "u2", "b", "pw", domain.RoleAdmin, false),
	)
	svc := NewAuthService(repo, newStubSessions(), "secret", time.Hour)

	if u, err := svc.Me(context.Background(), "u1"); err != nil || u.Username != "a" {
		t.Fatalf("Me(u1) = %+v, %v", u, err)
	}
	if _, err := svc.Me(context.Background(), "u2"); !errors.Is(err, domain.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
	if _, err := svc.Me(context.Background(), "nope"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthService_EnsureSuperAdmin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, newStubSessions(), "secret", time.Hour)
	ctx := context.Background()

	created, err := svc.EnsureSuperAdmin(ctx, "root", "changeme", "root@example.com")
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	u, err := repo.FindByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("seeded user missing: %v", err)
	}
	if u.Role != domain.RoleSuperAdmin || !u.IsActive {
		t.Fatalf("unexpected seeded user: %+v", u)
	}

	created, err = svc.EnsureSuperAdmin(ctx, "root2", "x", "root2@example.com")
	if err != nil || created {
		t.Fatalf("second seed should be a no-op: created=%v err=%v", created, err)
	}
}
