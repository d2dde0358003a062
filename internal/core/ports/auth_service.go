package ports

import (
	"context"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// AuthService issues, verifies and revokes session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	// Authenticate verifies a token and that its session is still live.
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}
