package ports

import (
	"context"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// UserInput is used for both create and update. On update an empty Password
// keeps the current one.
type UserInput struct {
	Username string
	Email    string
	Name     string
	Role     string
	Password string
	IsActive *bool
}

// UserService defines account administration use cases.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, in UserInput) (*domain.User, error)
	Update(ctx context.Context, id string, in UserInput) (*domain.User, error)
	Delete(ctx context.Context, who domain.Identity, id string) error
}
