package domain

import (
	"fmt"
	"math"
	"time"
)

// TransactionType is how a contract was sold.
type TransactionType string

const (
	TransactionOwnChannel TransactionType = "Own Channel"
	TransactionGTMA       TransactionType = "GTMA"
	TransactionNGTMA      TransactionType = "NGTMA"
)

// TransactionTypes lists every accepted transaction type.
var TransactionTypes = []TransactionType{TransactionOwnChannel, TransactionGTMA, TransactionNGTMA}

// Segment is the contract classification that drives the PIC list.
type Segment string

const (
	SegmentBusiness   Segment = "Business"
	SegmentGovernment Segment = "Government"
	SegmentEnterprise Segment = "Enterprise"
)

// Segments lists the segments in display order.
var Segments = []Segment{SegmentBusiness, SegmentGovernment, SegmentEnterprise}

// segmentPIC maps each segment to the people who may be responsible for it.
var segmentPIC = map[Segment][]string{
	SegmentBusiness:   {"Aldi", "Bayu", "Dian", "Fitrah", "Vivi"},
	SegmentGovernment: {"Taufik", "Tommy", "Noventi", "Mentari"},
	SegmentEnterprise: {"Cintia", "Yuda"},
}

// PICsForSegment returns a copy of the PIC names offered for seg.
func PICsForSegment(seg Segment) ([]string, bool) {
	names, ok := segmentPIC[seg]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// ValidSegment reports whether s is a known segment.
func ValidSegment(s Segment) bool {
	_, ok := segmentPIC[s]
	return ok
}

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t TransactionType) bool {
	for _, k := range TransactionTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Contract ("kontrak") is a signed work agreement with an optional PDF.
type Contract struct {
	ID              string          `json:"id" bson:"_id,omitempty"`
	Number          string          `json:"no_kontrak" bson:"no_kontrak"`
	ContractDate    Date            `json:"tanggal_kontrak" bson:"tanggal_kontrak"`
	Value           float64         `json:"nilai_kontrak" bson:"nilai_kontrak"`
	StartDate       Date            `json:"start_date" bson:"start_date"`
	EndDate         Date            `json:"end_date" bson:"end_date"`
	Period          string          `json:"periode_kontrak" bson:"-"`
	JobName         string          `json:"nama_pekerjaan" bson:"nama_pekerjaan"`
	CustomerName    string          `json:"nama_customer" bson:"nama_customer"`
	TransactionType TransactionType `json:"jenis_transaksi" bson:"jenis_transaksi"`
	Segment         Segment         `json:"segmen" bson:"segmen"`
	PICName         *string         `json:"pic_name" bson:"pic_name,omitempty"`
	FileKey         *string         `json:"file_path" bson:"file_path,omitempty"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" bson:"updated_at"`
}

// Derive fills the computed fields. Repositories call it after decoding.
func (c *Contract) Derive() {
	c.Period = ContractPeriod(c.StartDate, c.EndDate)
}

// ContractPeriod renders the duration between start and end in Indonesian units.
func ContractPeriod(start, end Date) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	if start.After(end.Time) {
		return "Invalid"
	}

	days := int(end.Sub(start.Time).Hours() / 24)
	months := int(math.Round(float64(days) / 30.44))

	switch {
	case months < 1:
		return fmt.Sprintf("%d hari", days)
	case months < 12:
		return fmt.Sprintf("%d bulan", months)
	}

	years, rest := months/12, months%12
	if rest == 0 {
		return fmt.Sprintf("%d tahun", years)
	}
	return fmt.Sprintf("%d tahun %d bulan", years, rest)
}

// ContractFile describes an attached PDF as listed by the pdf-list endpoint.
type ContractFile struct {
	ID           string `json:"id"`
	Number       string `json:"no_kontrak"`
	JobName      string `json:"nama_pekerjaan"`
	CustomerName string `json:"nama_customer"`
	Filename     string `json:"filename"`
	FileSize     string `json:"file_size"`
	UploadDate   string `json:"upload_date"`
	ViewURL      string `json:"view_url"`
	DownloadURL  string `json:"download_url"`
}
