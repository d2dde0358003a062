package handler

import (
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *domain.User `json:"user"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// --- Pelanggan ---

type createCustomerRequest struct {
	AccountNumber   string      `json:"no_akun"            validate:"required"`
	Name            string      `json:"nama_pelanggan"     validate:"required"`
	AMID            string      `json:"am_id"              validate:"required"`
	Product         string      `json:"produk"             validate:"required"`
	Category        string      `json:"kategori"           validate:"required,oneof=C3mr CYC CR"`
	StartDate       domain.Date `json:"start_date"`
	EndDate         domain.Date `json:"end_date"`
	BilledAmount    float64     `json:"jumlah_tagihan"     validate:"gte=0"`
	InvoiceStatus   string      `json:"status_invoice"     validate:"omitempty,oneof='Belum Terkirim' Terkirim"`
	PaymentProgress float64     `json:"progres_pembayaran" validate:"gte=0"`
}

// updateCustomerRequest only carries the fields editable after creation.
// Anything else in the body is ignored.
type updateCustomerRequest struct {
	InvoiceStatus   *string  `json:"status_invoice"     validate:"omitempty,oneof='Belum Terkirim' Terkirim"`
	PaymentProgress *float64 `json:"progres_pembayaran" validate:"omitempty,gte=0"`
}

type customerResponse struct {
	Message  string           `json:"message"`
	Customer *domain.Customer `json:"pelanggan"`
}

type customerListResponse struct {
	Customers  []domain.Customer   `json:"pelanggan"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type importResponse struct {
	Message       string `json:"message"`
	ImportedCount int    `json:"imported_count"`
}

// --- Kontrak ---

type contractRequest struct {
	Number          string      `json:"no_kontrak"      validate:"required"`
	ContractDate    domain.Date `json:"tanggal_kontrak"`
	Value           float64     `json:"nilai_kontrak"   validate:"gte=0"`
	StartDate       domain.Date `json:"start_date"`
	EndDate         domain.Date `json:"end_date"`
	JobName         string      `json:"nama_pekerjaan"  validate:"required"`
	CustomerName    string      `json:"nama_customer"   validate:"required"`
	TransactionType string      `json:"jenis_transaksi" validate:"required,oneof='Own Channel' GTMA NGTMA"`
	Segment         string      `json:"segmen"          validate:"required,oneof=Business Government Enterprise"`
	PICName         string      `json:"pic_name"`
}

type updateContractRequest struct {
	Number          *string      `json:"no_kontrak"      validate:"omitempty,min=1"`
	ContractDate    *domain.Date `json:"tanggal_kontrak"`
	Value           *float64     `json:"nilai_kontrak"   validate:"omitempty,gte=0"`
	StartDate       *domain.Date `json:"start_date"`
	EndDate         *domain.Date `json:"end_date"`
	JobName         *string      `json:"nama_pekerjaan"`
	CustomerName    *string      `json:"nama_customer"`
	TransactionType *string      `json:"jenis_transaksi" validate:"omitempty,oneof='Own Channel' GTMA NGTMA"`
	Segment         *string      `json:"segmen"          validate:"omitempty,oneof=Business Government Enterprise"`
	PICName         *string      `json:"pic_name"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"kontrak_ids" validate:"required,min=1,dive,required"`
}

type contractResponse struct {
	Message  string           `json:"message"`
	Contract *domain.Contract `json:"kontrak"`
}

type contractUploadResponse struct {
	Message  string           `json:"message"`
	FilePath string           `json:"file_path"`
	Contract *domain.Contract `json:"kontrak"`
}

type contractListResponse struct {
	Contracts  []domain.Contract   `json:"kontrak"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type pdfListResponse struct {
	Files []domain.ContractFile `json:"pdf_list"`
	Total int                   `json:"total"`
}

// --- Users ---

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,oneof=superadmin admin am"`
	IsActive *bool  `json:"is_active"`
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"     validate:"omitempty,oneof=superadmin admin am"`
	IsActive *bool  `json:"is_active"`
}

type userMessageResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type userListResponse struct {
	Users []domain.User `json:"users"`
}

// --- Lookups and progress ---

type amListResponse struct {
	AMs []domain.AccountManager `json:"am_list"`
}

type segmentPICResponse struct {
	Segment string   `json:"segmen"`
	PICs    []string `json:"pic_list"`
}

type segmentListResponse struct {
	Segments []domain.Segment `json:"segmen_list"`
}

type amProgressResponse struct {
	Progress []domain.AMProgress `json:"am_progress"`
}

type lastUpdateResponse struct {
	LastUpdate time.Time `json:"last_update"`
	Timestamp  time.Time `json:"timestamp"`
}

// paginationResponse is the page metadata of a listing requested with ?page.
type paginationResponse struct {
	Page        int   `json:"page"`
	PerPage     int   `json:"per_page"`
	Total       int   `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasPrev     bool  `json:"has_prev"`
	HasNext     bool  `json:"has_next"`
	StartIndex  int   `json:"start_index"`
	EndIndex    int   `json:"end_index"`
	PageNumbers []int `json:"page_numbers"`
}
