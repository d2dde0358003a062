package ports

import (
	"context"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// ContractRepository defines persistence operations for contracts.
type ContractRepository interface {
	Create(ctx context.Context, k *domain.Contract) error
	FindByID(ctx context.Context, id string) (*domain.Contract, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context) ([]domain.Contract, error)
	// ListWithFiles returns contracts that have an attached document.
	ListWithFiles(ctx context.Context) ([]domain.Contract, error)
	Update(ctx context.Context, k *domain.Contract) error
	// SetFile replaces the stored file key and bumps updated_at.
	SetFile(ctx context.Context, id, key string, at time.Time) error
	Delete(ctx context.Context, id string) error
	MaxUpdatedAt(ctx context.Context) (time.Time, error)
}
