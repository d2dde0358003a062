// Package importer reads customer and contract spreadsheets (CSV or the
// first sheet of an XLSX workbook) and writes the matching templates and
// exports.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, use .csv, .xlsx or .xls")
	ErrEmptyFile         = errors.New("file contains no data rows")
)

// Row is one data line. Line is the 1-based line number in the source file,
// so the first data row after the header is line 2.
type Row struct {
	Line  int
	cells map[string]string
}

// Get returns the trimmed cell of a normalised column, "" when absent.
func (r Row) Get(col string) string { return r.cells[col] }

// Has reports whether the cell is present and non-blank.
func (r Row) Has(col string) bool { return r.cells[col] != "" }

// Table is a parsed spreadsheet with normalised column names.
type Table struct {
	Columns []string
	Rows    []Row
}

// Missing returns the required columns absent from the header.
func (t *Table) Missing(required ...string) []string {
	have := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		have[c] = struct{}{}
	}
	var out []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeColumn lowercases a header, trims it and replaces inner spaces
// with underscores, so "No Akun " becomes "no_akun".
func NormalizeColumn(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}

// Format returns "csv" or "xlsx" for a supported filename.
func Format(filename string) (string, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "csv", nil
	case ".xlsx", ".xls":
		return "xlsx", nil
	}
	return "", ErrUnsupportedFormat
}

// Read parses filename's content according to its extension.
func Read(filename string, r io.Reader) (*Table, error) {
	format, err := Format(filename)
	if err != nil {
		return nil, err
	}

	var header []string
	var records [][]string
	var lines []int
	if format == "csv" {
		header, records, lines, err = readCSV(r)
	} else {
		header, records, err = readXLSXFirstSheet(r)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}

	t := &Table{Columns: make([]string, len(header))}
	for i, h := range header {
		t.Columns[i] = NormalizeColumn(h)
	}
	for i, rec := range records {
		if blank(rec) {
			continue
		}
		line := i + 2
		if lines != nil {
			line = lines[i]
		}
		t.Rows = append(t.Rows, Row{Line: line, cells: toMap(t.Columns, rec)})
	}
	if len(t.Rows) == 0 {
		return nil, ErrEmptyFile
	}
	return t, nil
}

// readCSV also returns the source line of each record, since the csv
// reader skips blank lines.
func readCSV(r io.Reader) ([]string, [][]string, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, nil, err
	}

	var records [][]string
	var lines []int
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return header, records, lines, nil
}

func readXLSXFirstSheet(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Error() != nil {
			return nil, nil, rows.Error()
		}
		return nil, nil, ErrEmptyFile
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, nil, err
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

// sniffDelimiter picks the most frequent of , ; and tab on the header line.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestN := ',', bytes.Count(line, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

func toMap(header []string, row []string) map[string]string {
	m := make(map[string]string, len(header))
	for i, key := range header {
		if key == "" {
			continue
		}
		val := ""
		if i < len(row) {
			val = row[i]
		}
		m[key] = strings.TrimSpace(val)
	}
	return m
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
