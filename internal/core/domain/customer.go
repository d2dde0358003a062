package domain

import "time"

// Category is the billing category of a customer.
type Category string

const (
	CategoryC3mr Category = "C3mr"
	CategoryCYC  Category = "CYC"
	CategoryCR   Category = "CR"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryC3mr, CategoryCYC, CategoryCR}

// InvoiceStatus records whether the invoice reached the customer.
type InvoiceStatus string

const (
	InvoiceNotSent InvoiceStatus = "Belum Terkirim"
	InvoiceSent    InvoiceStatus = "Terkirim"
)

// PaymentStatus is derived from the billed amount and the payment progress.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "Belum Bayar"
	PaymentPartial PaymentStatus = "Cicil"
	PaymentPaid    PaymentStatus = "Lunas"
)

// PartialLabel is how PaymentPartial is shown to users and written to exports.
const PartialLabel = "Partial"

// Label returns the external label of the status. Only PaymentPartial differs
// from its stored value.
func (s PaymentStatus) Label() string {
	if s == PaymentPartial {
		return PartialLabel
	}
	return string(s)
}

// ParsePaymentStatus accepts either the stored value or the external label.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch s {
	case string(PaymentUnpaid):
		return PaymentUnpaid, true
	case string(PaymentPartial), PartialLabel:
		return PaymentPartial, true
	case string(PaymentPaid):
		return PaymentPaid, true
	}
	return "", false
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	return s == InvoiceNotSent || s == InvoiceSent
}

// Customer is a billed subscriber ("pelanggan") owned by an account manager.
type Customer struct {
	ID              string        `json:"id" bson:"_id,omitempty"`
	AccountNumber   string        `json:"no_akun" bson:"no_akun"`
	Name            string        `json:"nama_pelanggan" bson:"nama_pelanggan"`
	AMID            string        `json:"am_id" bson:"am_id"`
	AMName          string        `json:"nama_am" bson:"-"`
	Product         string        `json:"produk" bson:"produk"`
	Category        Category      `json:"kategori" bson:"kategori"`
	StartDate       Date          `json:"start_date" bson:"start_date"`
	EndDate         Date          `json:"end_date" bson:"end_date"`
	BilledAmount    float64       `json:"jumlah_tagihan" bson:"jumlah_tagihan"`
	InvoiceStatus   InvoiceStatus `json:"status_invoice" bson:"status_invoice"`
	PaymentProgress float64       `json:"progres_pembayaran" bson:"progres_pembayaran"`
	PaymentStatus   PaymentStatus `json:"status_pembayaran" bson:"-"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// DerivePaymentStatus computes the payment status from progress and billed amount.
func DerivePaymentStatus(progress, billed float64) PaymentStatus {
	switch {
	case progress == 0:
		return PaymentUnpaid
	case progress >= billed:
		return PaymentPaid
	default:
		return PaymentPartial
	}
}

// Derive fills the computed fields. Repositories call it after decoding.
func (c *Customer) Derive() {
	c.PaymentStatus = DerivePaymentStatus(c.PaymentProgress, c.BilledAmount)
}

// AccountManager is the lookup entry used by select inputs and AM filters.
type AccountManager struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentSummary aggregates billing totals over a set of customers.
type PaymentSummary struct {
	TotalProgress float64 `json:"total_progres_pembayaran"`
	TotalBilled   float64 `json:"total_tagihan"`
	CustomerCount int     `json:"jumlah_pelanggan"`
	AMID          *string `json:"am_id"`
}

// AMProgress is the per account-manager billing roll-up.
type AMProgress struct {
	AMID               string  `json:"am_id"`
	AMName             string  `json:"nama_am"`
	TotalProgress      float64 `json:"total_progres_pembayaran"`
	TotalBilled        float64 `json:"total_tagihan"`
	Remaining          float64 `json:"sisa_tagihan"`
	ProgressPercentage float64 `json:"progress_percentage"`
	CustomerCount      int     `json:"jumlah_pelanggan"`
	PaidCustomers      int     `json:"pelanggan_lunas"`
}
