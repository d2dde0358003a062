package ports

import (
	"context"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// CustomerRepository defines persistence operations for customers.
// Returned customers have their derived fields filled, except AMName which
// the service resolves from the user list.
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	// InsertMany stores every customer or none of them.
	InsertMany(ctx context.Context, cs []domain.Customer) error
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	// List returns customers newest first. A non-empty amID restricts the result.
	List(ctx context.Context, amID string) ([]domain.Customer, error)
	UpdatePayment(ctx context.Context, id string, invoice domain.InvoiceStatus, progress float64, at time.Time) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	// ExistingAccountNumbers returns the subset of numbers already stored.
	ExistingAccountNumbers(ctx context.Context, numbers []string) ([]string, error)
	// MaxUpdatedAt returns the latest updated_at, zero when there are no rows.
	MaxUpdatedAt(ctx context.Context, amID string) (time.Time, error)
}
