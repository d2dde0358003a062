package ports

import (
	"context"
	"io"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

// CustomerInput carries the fields of a new customer.
type CustomerInput struct {
	AccountNumber   string
	Name            string
	AMID            string
	Product         string
	Category        domain.Category
	StartDate       domain.Date
	EndDate         domain.Date
	BilledAmount    float64
	InvoiceStatus   domain.InvoiceStatus
	PaymentProgress float64
}

// PaymentUpdate carries the only customer fields editable after creation.
// Nil fields are left unchanged.
type PaymentUpdate struct {
	InvoiceStatus   *domain.InvoiceStatus
	PaymentProgress *float64
}

// CustomerQuery selects customers for the list and export endpoints.
// Page 0 disables pagination.
type CustomerQuery struct {
	Criteria listview.CustomerCriteria
	Page     int
	PerPage  int
}

// CustomerList is the result of a customer query.
type CustomerList struct {
	Items []domain.Customer
	Page  *listview.Page[domain.Customer]
}

// CustomerService defines billing use cases. Every call is scoped by the
// caller identity: account managers only ever see their own customers.
type CustomerService interface {
	List(ctx context.Context, who domain.Identity, q CustomerQuery) (*CustomerList, error)
	Create(ctx context.Context, in CustomerInput) (*domain.Customer, error)
	UpdatePayment(ctx context.Context, id string, in PaymentUpdate) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
	BulkImport(ctx context.Context, filename string, r io.Reader) (int, error)
	Export(ctx context.Context, who domain.Identity, q CustomerQuery, format string, w io.Writer) error
	Summary(ctx context.Context, who domain.Identity, amID string) (*domain.PaymentSummary, error)
	ProgressPerAM(ctx context.Context) ([]domain.AMProgress, error)
	AMList(ctx context.Context) ([]domain.AccountManager, error)
	LastUpdate(ctx context.Context, who domain.Identity) (time.Time, error)
}
