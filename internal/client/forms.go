package client

import (
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// Mode selects whether a form creates a record or edits an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Request is what a form submits. Body is sent as JSON unless File is set,
// in which case Fields and File go out as multipart.
type Request struct {
	Method string
	Path   string
	Body   any
	Fields map[string]string
	File   *Attachment
}

// Attachment is a file carried by a multipart form.
type Attachment struct {
	Name   string
	Reader io.Reader
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

func requiredDate(field string, d domain.Date) error {
	if d.IsZero() {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// CustomerForm backs the customer create and edit dialogs.
type CustomerForm struct {
	Mode            Mode
	ID              string
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

var customerEditable = []string{"progres_pembayaran", "status_invoice"}

// Locked reports whether field is read-only in the form's mode. In edit mode
// only the payment fields may change.
func (f CustomerForm) Locked(field string) bool {
	return f.Mode == ModeEdit && !slices.Contains(customerEditable, field)
}

func (f CustomerForm) Validate() error {
	if f.PaymentProgress < 0 {
		return &ValidationError{Field: "progres_pembayaran", Message: "progres_pembayaran must not be negative"}
	}
	if f.InvoiceStatus != "" && !domain.ValidInvoiceStatus(f.InvoiceStatus) {
		return &ValidationError{Field: "status_invoice", Message: "status_invoice is invalid"}
	}
	if f.Mode == ModeEdit {
		return required("id", f.ID)
	}
	if err := firstError(
		required("no_akun", f.AccountNumber),
		required("nama_pelanggan", f.Name),
		required("am_id", f.AMID),
		required("produk", f.Product),
		required("kategori", string(f.Category)),
	); err != nil {
		return err
	}
	if !domain.ValidCategory(f.Category) {
		return &ValidationError{Field: "kategori", Message: "kategori must be one of C3mr, CYC, CR"}
	}
	if err := firstError(requiredDate("start_date", f.StartDate), requiredDate("end_date", f.EndDate)); err != nil {
		return err
	}
	if f.BilledAmount < 0 {
		return &ValidationError{Field: "jumlah_tagihan", Message: "jumlah_tagihan must not be negative"}
	}
	return nil
}

func (f CustomerForm) Request() (Request, error) {
	if err := f.Validate(); err != nil {
		return Request{}, err
	}
	if f.Mode == ModeEdit {
		body := map[string]any{"progres_pembayaran": f.PaymentProgress}
		if f.InvoiceStatus != "" {
			body["status_invoice"] = f.InvoiceStatus
		}
		return Request{Method: http.MethodPut, Path: "/api/pelanggan/" + url.PathEscape(f.ID), Body: body}, nil
	}
	body := map[string]any{
		"no_akun":            strings.TrimSpace(f.AccountNumber),
		"nama_pelanggan":     strings.TrimSpace(f.Name),
		"am_id":              f.AMID,
		"produk":             strings.TrimSpace(f.Product),
		"kategori":           f.Category,
		"start_date":         f.StartDate,
		"end_date":           f.EndDate,
		"jumlah_tagihan":     f.BilledAmount,
		"progres_pembayaran": f.PaymentProgress,
	}
	if f.InvoiceStatus != "" {
		body["status_invoice"] = f.InvoiceStatus
	}
	return Request{Method: http.MethodPost, Path: "/api/pelanggan", Body: body}, nil
}

// ContractForm backs the contract dialogs. File is only used on create.
type ContractForm struct {
	Mode            Mode
	ID              string
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
	File            *Attachment
}

func (f ContractForm) Validate() error {
	if f.Mode == ModeEdit {
		if err := required("id", f.ID); err != nil {
			return err
		}
	} else if err := firstError(
		required("no_kontrak", f.Number),
		required("nama_pekerjaan", f.JobName),
		required("nama_customer", f.CustomerName),
		required("jenis_transaksi", string(f.TransactionType)),
		required("segmen", string(f.Segment)),
		requiredDate("tanggal_kontrak", f.ContractDate),
		requiredDate("start_date", f.StartDate),
		requiredDate("end_date", f.EndDate),
	); err != nil {
		return err
	} else if f.Value == 0 {
		// A zero value cannot be told apart from an empty field.
		return &ValidationError{Field: "nilai_kontrak", Message: "nilai_kontrak is required"}
	}
	if f.TransactionType != "" && !domain.ValidTransactionType(f.TransactionType) {
		return &ValidationError{Field: "jenis_transaksi", Message: "jenis_transaksi must be one of Own Channel, GTMA, NGTMA"}
	}
	if f.Segment != "" && !domain.ValidSegment(f.Segment) {
		return &ValidationError{Field: "segmen", Message: "segmen must be one of Business, Government, Enterprise"}
	}
	if f.Value < 0 {
		return &ValidationError{Field: "nilai_kontrak", Message: "nilai_kontrak must not be negative"}
	}
	if f.File != nil && !strings.EqualFold(filepath.Ext(f.File.Name), ".pdf") {
		return &ValidationError{Field: uploadField, Message: "Only PDF files are allowed"}
	}
	return nil
}

func (f ContractForm) Request() (Request, error) {
	if err := f.Validate(); err != nil {
		return Request{}, err
	}
	if f.Mode == ModeEdit {
		body := map[string]any{
			"no_kontrak":      strings.TrimSpace(f.Number),
			"tanggal_kontrak": f.ContractDate,
			"nilai_kontrak":   f.Value,
			"start_date":      f.StartDate,
			"end_date":        f.EndDate,
			"nama_pekerjaan":  strings.TrimSpace(f.JobName),
			"nama_customer":   strings.TrimSpace(f.CustomerName),
			"jenis_transaksi": f.TransactionType,
			"segmen":          f.Segment,
			"pic_name":        strings.TrimSpace(f.PICName),
		}
		return Request{Method: http.MethodPut, Path: "/api/kontrak/" + url.PathEscape(f.ID), Body: body}, nil
	}

	if f.File != nil {
		fields := map[string]string{
			"no_kontrak":      strings.TrimSpace(f.Number),
			"tanggal_kontrak": f.ContractDate.String(),
			"nilai_kontrak":   strconv.FormatFloat(f.Value, 'f', -1, 64),
			"start_date":      f.StartDate.String(),
			"end_date":        f.EndDate.String(),
			"nama_pekerjaan":  strings.TrimSpace(f.JobName),
			"nama_customer":   strings.TrimSpace(f.CustomerName),
			"jenis_transaksi": string(f.TransactionType),
			"segmen":          string(f.Segment),
			"pic_name":        strings.TrimSpace(f.PICName),
		}
		return Request{Method: http.MethodPost, Path: "/api/kontrak", Fields: fields, File: f.File}, nil
	}
	body := map[string]any{
		"no_kontrak":      strings.TrimSpace(f.Number),
		"tanggal_kontrak": f.ContractDate,
		"nilai_kontrak":   f.Value,
		"start_date":      f.StartDate,
		"end_date":        f.EndDate,
		"nama_pekerjaan":  strings.TrimSpace(f.JobName),
		"nama_customer":   strings.TrimSpace(f.CustomerName),
		"jenis_transaksi": f.TransactionType,
		"segmen":          f.Segment,
		"pic_name":        strings.TrimSpace(f.PICName),
	}
	return Request{Method: http.MethodPost, Path: "/api/kontrak", Body: body}, nil
}

// UserForm backs account management. On edit a blank password keeps the
// current one.
type UserForm struct {
	Mode     Mode
	ID       string
	Username string
	Email    string
	Name     string
	Role     string
	Password string
	IsActive *bool
}

func (f UserForm) Validate() error {
	if f.Mode == ModeEdit {
		if err := required("id", f.ID); err != nil {
			return err
		}
	} else if err := firstError(
		required("username", f.Username),
		required("email", f.Email),
		required("name", f.Name),
		required("password", f.Password),
	); err != nil {
		return err
	}
	if f.Email != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			return &ValidationError{Field: "email", Message: "email must be a valid email address"}
		}
	}
	if f.Role != "" && !domain.ValidRole(f.Role) {
		return &ValidationError{Field: "role", Message: "role must be one of superadmin, admin, am"}
	}
	return nil
}

func (f UserForm) Request() (Request, error) {
	if err := f.Validate(); err != nil {
		return Request{}, err
	}
	body := map[string]any{
		"username": strings.TrimSpace(f.Username),
		"email":    strings.TrimSpace(f.Email),
		"name":     strings.TrimSpace(f.Name),
	}
	if f.Role != "" {
		body["role"] = f.Role
	}
	if f.IsActive != nil {
		body["is_active"] = *f.IsActive
	}
	if f.Password != "" {
		body["password"] = f.Password
	}
	if f.Mode == ModeEdit {
		return Request{Method: http.MethodPut, Path: "/api/users/" + url.PathEscape(f.ID), Body: body}, nil
	}
	return Request{Method: http.MethodPost, Path: "/api/users", Body: body}, nil
}

