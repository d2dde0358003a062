package ports

import (
	"context"
	"io"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

// ContractInput carries the fields of a new contract.
type ContractInput struct {
	Number          string
	ContractDate    domain.Date
	Value           float64
	StartDate       domain.Date
	EndDate         domain.Date
	JobName         string
	CustomerName    string
	TransactionType domain.TransactionType
	Segment         domain.Segment
	PICName         string
}

// ContractPatch updates only the non-nil fields.
type ContractPatch struct {
	Number          *string
	ContractDate    *domain.Date
	Value           *float64
	StartDate       *domain.Date
	EndDate         *domain.Date
	JobName         *string
	CustomerName    *string
	TransactionType *domain.TransactionType
	Segment         *domain.Segment
	PICName         *string
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// ContractQuery selects contracts; Page 0 disables pagination.
type ContractQuery struct {
	Criteria listview.ContractCriteria
	Page     int
	PerPage  int
}

type ContractList struct {
	Items []domain.Contract
	Page  *listview.Page[domain.Contract]
}

// ImportResult reports a partial import: valid rows are stored, the rest are
// listed in Errors.
type ImportResult struct {
	Message       string   `json:"message"`
	ImportedCount int      `json:"imported_count"`
	Errors        []string `json:"errors"`
}

// BulkDeleteResult reports which contracts could not be deleted.
type BulkDeleteResult struct {
	Message      string   `json:"message"`
	DeletedCount int      `json:"deleted_count"`
	Errors       []string `json:"errors"`
}

// ContractService defines contract and document use cases.
type ContractService interface {
	List(ctx context.Context, q ContractQuery) (*ContractList, error)
	Create(ctx context.Context, in ContractInput, file *Upload) (*domain.Contract, error)
	Update(ctx context.Context, id string, p ContractPatch) (*domain.Contract, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (*BulkDeleteResult, error)
	BulkImport(ctx context.Context, filename string, r io.Reader) (*ImportResult, error)
	AttachFile(ctx context.Context, id string, file Upload) (*domain.Contract, error)
	OpenFile(ctx context.Context, id string) (io.ReadCloser, FileInfo, error)
	ListFiles(ctx context.Context) ([]domain.ContractFile, error)
}
