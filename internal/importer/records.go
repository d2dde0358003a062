package importer

import (
	"fmt"
	"strings"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// CustomerColumns lists the columns a customer file must carry.
var CustomerColumns = []string{
	"no_akun", "nama_pelanggan", "am_id", "produk", "kategori",
	"start_date", "end_date", "jumlah_tagihan",
}

// ContractColumns lists the columns every contract row must fill.
var ContractColumns = []string{
	"no_kontrak", "tanggal_kontrak", "nilai_kontrak", "start_date", "end_date",
	"nama_pekerjaan", "nama_customer", "jenis_transaksi", "segmen",
}

// CustomerRecord is a parsed customer row. AMRef is the raw am_id cell; the
// caller resolves it against the known account managers.
type CustomerRecord struct {
	Line     int
	AMRef    string
	Customer domain.Customer
}

// Customers converts every row, collecting one message per invalid row.
func Customers(t *Table) ([]CustomerRecord, []string) {
	var out []CustomerRecord
	var errs []string

	for _, row := range t.Rows {
		rec, err := customerRow(row)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", row.Line, err))
			continue
		}
		out = append(out, rec)
	}
	return out, errs
}

func customerRow(row Row) (CustomerRecord, error) {
	if !row.Has("no_akun") || !row.Has("nama_pelanggan") || !row.Has("am_id") {
		return CustomerRecord{}, fmt.Errorf("no_akun, nama_pelanggan and am_id must not be empty")
	}

	c := domain.Customer{
		AccountNumber: AccountNumber(row.Get("no_akun")),
		Name:          row.Get("nama_pelanggan"),
		Product:       row.Get("produk"),
		Category:      domain.Category(row.Get("kategori")),
		InvoiceStatus: domain.InvoiceStatus(row.Get("status_invoice")),
	}
	if c.Category == "" {
		c.Category = domain.CategoryC3mr
	}
	if !domain.ValidCategory(c.Category) {
		return CustomerRecord{}, fmt.Errorf("unknown kategori %q", c.Category)
	}
	if c.InvoiceStatus == "" {
		c.InvoiceStatus = domain.InvoiceNotSent
	}
	if !domain.ValidInvoiceStatus(c.InvoiceStatus) {
		return CustomerRecord{}, fmt.Errorf("unknown status_invoice %q", c.InvoiceStatus)
	}

	var err error
	if c.StartDate, err = ParseDate(row.Get("start_date")); err != nil {
		return CustomerRecord{}, fmt.Errorf("start_date: %w", err)
	}
	if c.EndDate, err = ParseDate(row.Get("end_date")); err != nil {
		return CustomerRecord{}, fmt.Errorf("end_date: %w", err)
	}
	if c.BilledAmount, err = ParseAmount(row.Get("jumlah_tagihan")); err != nil {
		return CustomerRecord{}, fmt.Errorf("jumlah_tagihan: %w", err)
	}
	if c.PaymentProgress, err = ParseAmount(row.Get("progres_pembayaran")); err != nil {
		return CustomerRecord{}, fmt.Errorf("progres_pembayaran: %w", err)
	}

	return CustomerRecord{Line: row.Line, AMRef: AccountNumber(row.Get("am_id")), Customer: c}, nil
}

// ContractRecord is a parsed contract row.
type ContractRecord struct {
	Line     int
	Contract domain.Contract
}

// Contracts converts every row, collecting one message per invalid row.
func Contracts(t *Table) ([]ContractRecord, []string) {
	var out []ContractRecord
	var errs []string

	for _, row := range t.Rows {
		k, err := contractRow(row)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", row.Line, err))
			continue
		}
		out = append(out, ContractRecord{Line: row.Line, Contract: k})
	}
	return out, errs
}

func contractRow(row Row) (domain.Contract, error) {
	for _, col := range ContractColumns {
		if !row.Has(col) {
			return domain.Contract{}, fmt.Errorf("field '%s' is required", col)
		}
	}

	k := domain.Contract{
		Number:          row.Get("no_kontrak"),
		JobName:         row.Get("nama_pekerjaan"),
		CustomerName:    row.Get("nama_customer"),
		TransactionType: domain.TransactionType(row.Get("jenis_transaksi")),
		Segment:         domain.Segment(row.Get("segmen")),
	}
	if !domain.ValidTransactionType(k.TransactionType) {
		return domain.Contract{}, fmt.Errorf("unknown jenis_transaksi %q", k.TransactionType)
	}
	if !domain.ValidSegment(k.Segment) {
		return domain.Contract{}, fmt.Errorf("unknown segmen %q", k.Segment)
	}
	if pic := strings.TrimSpace(row.Get("pic_name")); pic != "" {
		k.PICName = &pic
	}

	var err error
	if k.ContractDate, err = ParseDate(row.Get("tanggal_kontrak")); err != nil {
		return domain.Contract{}, fmt.Errorf("tanggal_kontrak: %w", err)
	}
	if k.StartDate, err = ParseDate(row.Get("start_date")); err != nil {
		return domain.Contract{}, fmt.Errorf("start_date: %w", err)
	}
	if k.EndDate, err = ParseDate(row.Get("end_date")); err != nil {
		return domain.Contract{}, fmt.Errorf("end_date: %w", err)
	}
	if k.Value, err = ParseAmount(row.Get("nilai_kontrak")); err != nil {
		return domain.Contract{}, fmt.Errorf("nilai_kontrak: %w", err)
	}
	return k, nil
}
