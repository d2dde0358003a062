package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

const (
	KindCustomer = "pelanggan"
	KindContract = "kontrak"
)

var templates = map[string][][]string{
	KindCustomer: {
		{"no_akun", "nama_pelanggan", "am_id", "produk", "kategori", "start_date", "end_date", "jumlah_tagihan", "status_invoice", "progres_pembayaran"},
		{"EXAMPLE001", "PT Example Company", "am_username", "Product Example", "C3mr", "2024-01-01", "2024-12-31", "1000000", "Belum Terkirim", "0"},
	},
	KindContract: {
		{"no_kontrak", "tanggal_kontrak", "nilai_kontrak", "start_date", "end_date", "nama_pekerjaan", "nama_customer", "jenis_transaksi", "segmen", "pic_name"},
		{"KTR-001", "2024-01-01", "50000000", "2024-01-15", "2025-01-14", "Pengadaan Jaringan WiFi", "PT Example Company", "Own Channel", "Business", "Aldi"},
	},
}

// Template returns the CSV template for kind and its download filename.
func Template(kind string) ([]byte, string, error) {
	rows, ok := templates[kind]
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown template %q", domain.ErrInvalidInput, kind)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "template_" + kind + ".csv", nil
}

var exportHeader = []string{
	"No Akun", "Nama Pelanggan", "Nama AM", "Produk", "Kategori", "Start Date", "End Date",
	"Jumlah Tagihan", "Status Invoice", "Progres Pembayaran", "Status Pembayaran",
}

func exportRow(c domain.Customer) []string {
	return []string{
		c.AccountNumber,
		c.Name,
		c.AMName,
		c.Product,
		string(c.Category),
		c.StartDate.String(),
		c.EndDate.String(),
		strconv.FormatFloat(c.BilledAmount, 'f', -1, 64),
		string(c.InvoiceStatus),
		strconv.FormatFloat(c.PaymentProgress, 'f', -1, 64),
		c.PaymentStatus.Label(),
	}
}

// ExportCustomers writes customers as "csv" or "xlsx". Payment status uses
// the external labels.
func ExportCustomers(w io.Writer, format string, customers []domain.Customer) error {
	switch format {
	case "", "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(exportHeader); err != nil {
			return err
		}
		for _, c := range customers {
			if err := cw.Write(exportRow(c)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case "xlsx":
		return exportXLSX(w, customers)
	}
	return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, format)
}

func exportXLSX(w io.Writer, customers []domain.Customer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Pelanggan"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, c := range customers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := exportRow(c)
		row := make([]any, len(vals))
		for j, v := range vals {
			row[j] = v
		}
		row[7], row[9] = c.BilledAmount, c.PaymentProgress
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

// ExportContentType returns the MIME type and file extension of format.
func ExportContentType(format string) (string, string) {
	if format == "xlsx" {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"
	}
	return "text/csv", ".csv"
}
