package ports

import (
	"context"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// UserRepository defines persistence operations for application users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ExistsUsernameOrEmail reports a clash with any user other than excludeID.
	ExistsUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error)
	List(ctx context.Context) ([]domain.User, error)
	// ListActiveAMs returns active users with the am role sorted by name.
	ListActiveAMs(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
