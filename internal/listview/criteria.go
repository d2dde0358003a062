package listview

import (
	"net/url"
	"strings"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// Periods lists the rolling windows offered by the customer view.
var Periods = []string{"1_bulan", "3_bulan", "6_bulan", "12_bulan", "2_tahun", "5_tahun"}

// PeriodStart returns the earliest start date included by period, measured
// back from the calendar day of now. ok is false for All or an unknown period.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	today := domain.NewDate(now).Time
	switch period {
	case "1_bulan":
		return today.AddDate(0, -1, 0), true
	case "3_bulan":
		return today.AddDate(0, -3, 0), true
	case "6_bulan":
		return today.AddDate(0, -6, 0), true
	case "12_bulan":
		return today.AddDate(-1, 0, 0), true
	case "2_tahun":
		return today.AddDate(-2, 0, 0), true
	case "5_tahun":
		return today.AddDate(-5, 0, 0), true
	}
	return time.Time{}, false
}

// CustomerCriteria is the filter state of the billing view. Empty fields
// behave like All.
type CustomerCriteria struct {
	Category      string
	Period        string
	AMID          string
	PaymentStatus string
	InvoiceStatus string
	Search        string
}

// NewCustomerCriteria returns criteria with every field at its sentinel.
func NewCustomerCriteria() CustomerCriteria {
	var c CustomerCriteria
	c.Reset()
	return c
}

// Reset restores every field to its sentinel.
func (c *CustomerCriteria) Reset() {
	*c = CustomerCriteria{
		Category:      All,
		Period:        All,
		AMID:          All,
		PaymentStatus: All,
		InvoiceStatus: All,
	}
}

// Active reports whether any filter differs from its sentinel.
func (c CustomerCriteria) Active() bool {
	for _, v := range []string{c.Category, c.Period, c.AMID, c.PaymentStatus, c.InvoiceStatus} {
		if v != "" && v != All {
			return true
		}
	}
	return strings.TrimSpace(c.Search) != ""
}

// Predicates builds the filters for c. now anchors the rolling period window.
func (c CustomerCriteria) Predicates(now time.Time) []Predicate[domain.Customer] {
	preds := []Predicate[domain.Customer]{
		Equals(c.Category, func(p domain.Customer) string { return string(p.Category) }),
		Equals(c.AMID, func(p domain.Customer) string { return p.AMID }),
		Equals(c.InvoiceStatus, func(p domain.Customer) string { return string(p.InvoiceStatus) }),
		ContainsFold(c.Search,
			func(p domain.Customer) string { return p.AccountNumber },
			func(p domain.Customer) string { return p.Name },
			func(p domain.Customer) string { return p.AMName },
			func(p domain.Customer) string { return p.Product },
		),
	}

	if from, ok := PeriodStart(c.Period, now); ok {
		preds = append(preds, Since(from, func(p domain.Customer) time.Time { return p.StartDate.Time }))
	}

	if c.PaymentStatus != "" && c.PaymentStatus != All {
		want, ok := domain.ParsePaymentStatus(c.PaymentStatus)
		if !ok {
			return append(preds, func(domain.Customer) bool { return false })
		}
		preds = append(preds, func(p domain.Customer) bool { return p.PaymentStatus == want })
	}
	return preds
}

// Apply filters customers by c.
func (c CustomerCriteria) Apply(customers []domain.Customer, now time.Time) []domain.Customer {
	return Filter(customers, c.Predicates(now)...)
}

// Values encodes the non-sentinel fields as query parameters.
func (c CustomerCriteria) Values() url.Values {
	v := url.Values{}
	setIf(v, "kategori", c.Category)
	setIf(v, "periode", c.Period)
	setIf(v, "am_id", c.AMID)
	setIf(v, "status_pembayaran", c.PaymentStatus)
	setIf(v, "status_invoice", c.InvoiceStatus)
	setIf(v, "search", c.Search)
	return v
}

// ParseCustomerCriteria reads criteria from query parameters.
func ParseCustomerCriteria(q url.Values) CustomerCriteria {
	c := NewCustomerCriteria()
	getIf(q, "kategori", &c.Category)
	getIf(q, "periode", &c.Period)
	getIf(q, "am_id", &c.AMID)
	getIf(q, "status_pembayaran", &c.PaymentStatus)
	getIf(q, "status_invoice", &c.InvoiceStatus)
	c.Search = strings.TrimSpace(q.Get("search"))
	return c
}

// ContractCriteria is the filter state of the contract view. From and To are
// YYYY-MM-DD bounds on the contract date; either may be empty.
type ContractCriteria struct {
	From            string
	To              string
	Segment         string
	TransactionType string
	Search          string
}

func NewContractCriteria() ContractCriteria {
	var c ContractCriteria
	c.Reset()
	return c
}

func (c *ContractCriteria) Reset() {
	*c = ContractCriteria{Segment: All, TransactionType: All}
}

func (c ContractCriteria) Active() bool {
	return c.From != "" || c.To != "" ||
		(c.Segment != "" && c.Segment != All) ||
		(c.TransactionType != "" && c.TransactionType != All) ||
		strings.TrimSpace(c.Search) != ""
}

// Predicates builds the filters for c. Unparseable date bounds are ignored.
func (c ContractCriteria) Predicates() []Predicate[domain.Contract] {
	var from, to time.Time
	if d, err := domain.ParseDate(c.From); err == nil {
		from = d.Time
	}
	if d, err := domain.ParseDate(c.To); err == nil {
		to = d.Time
	}

	return []Predicate[domain.Contract]{
		Between(from, to, func(k domain.Contract) time.Time { return k.ContractDate.Time }),
		Equals(c.Segment, func(k domain.Contract) string { return string(k.Segment) }),
		Equals(c.TransactionType, func(k domain.Contract) string { return string(k.TransactionType) }),
		ContainsFold(c.Search,
			func(k domain.Contract) string { return k.Number },
			func(k domain.Contract) string { return k.JobName },
			func(k domain.Contract) string { return k.CustomerName },
			func(k domain.Contract) string {
				if k.PICName == nil {
					return ""
				}
				return *k.PICName
			},
		),
	}
}

func (c ContractCriteria) Apply(contracts []domain.Contract) []domain.Contract {
	return Filter(contracts, c.Predicates()...)
}

func (c ContractCriteria) Values() url.Values {
	v := url.Values{}
	setIf(v, "from", c.From)
	setIf(v, "to", c.To)
	setIf(v, "segmen", c.Segment)
	setIf(v, "jenis_transaksi", c.TransactionType)
	setIf(v, "search", c.Search)
	return v
}

func ParseContractCriteria(q url.Values) ContractCriteria {
	c := NewContractCriteria()
	c.From = strings.TrimSpace(q.Get("from"))
	c.To = strings.TrimSpace(q.Get("to"))
	getIf(q, "segmen", &c.Segment)
	getIf(q, "jenis_transaksi", &c.TransactionType)
	c.Search = strings.TrimSpace(q.Get("search"))
	return c
}

func setIf(v url.Values, key, val string) {
	val = strings.TrimSpace(val)
	if val != "" && val != All {
		v.Set(key, val)
	}
}

func getIf(q url.Values, key string, dst *string) {
	if val := strings.TrimSpace(q.Get(key)); val != "" {
		*dst = val
	}
}
