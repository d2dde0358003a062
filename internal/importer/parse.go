package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// ParseDate accepts ISO dates, a few day-first variants and Excel serial
// day numbers as written by spreadsheets exported without formatting.
func ParseDate(s string) (domain.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Date{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.NewDate(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return domain.NewDate(t), nil
		}
	}
	return domain.Date{}, fmt.Errorf("invalid date %q", s)
}

// ParseAmount parses a non-negative amount. A leading "Rp" and thousands
// separators written as commas or spaces are ignored.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "Rp"), "rp")
	clean = strings.NewReplacer(",", "", " ", "").Replace(clean)
	if clean == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}
	return v, nil
}

// AccountNumber drops a spreadsheet's trailing decimal part, so a numeric
// cell read as "12345.0" yields "12345".
func AccountNumber(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}
