package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// AuthService implements login, logout and token verification. Tokens are
// HS256 JWTs carrying a session id that must still exist in the session
// store, so a logout revokes the token before it expires.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// TokenTTL is the lifetime of issued tokens, used for the cookie max-age.
func (s *AuthService) TokenTTL() time.Duration { return s.tokenTTL }

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrInactiveUser
	}

	sid := uuid.NewString()
	if err := s.sessions.Save(ctx, sid, user.ID, s.tokenTTL); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user, sid)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	id := domain.Identity{
		UserID:    claimString(claims, "sub"),
		Username:  claimString(claims, "username"),
		Name:      claimString(claims, "name"),
		Role:      claimString(claims, "role"),
		SessionID: claimString(claims, "sid"),
	}
	if id.UserID == "" || id.SessionID == "" || !domain.ValidRole(id.Role) {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	live, err := s.sessions.Exists(ctx, id.SessionID)
	if err != nil {
		return domain.Identity{}, err
	}
	if !live {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// EnsureSuperAdmin creates the first superadmin when no user exists yet. It
// reports whether an account was created.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, username, password, email string) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if username == "" || password == "" {
		return false, fmt.Errorf("%w: seed admin username and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	now := s.now().UTC()
	_, err = s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		Name:         "Super Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AuthService) generateToken(user *domain.User, sid string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"name":     user.Name,
		"role":     user.Role,
		"sid":      sid,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
