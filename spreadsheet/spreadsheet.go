// Package spreadsheet reads and writes the tabular files the tools exchange:
// .xlsx workbooks through excelize and .csv through encoding/csv. A Table is
// a header row plus string rows either way.
package spreadsheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupported is returned for extensions other than .xlsx and .csv.
var ErrUnsupported = errors.New("spreadsheet: unsupported file type")

// DefaultSheet names the single sheet of a one-table workbook.
const DefaultSheet = "Sheet1"

// maxColumnWidth caps auto-sized columns so long ingredient lists stay readable.
const maxColumnWidth = 60

type Table struct {
	Header []string
	Rows   [][]string
}

// Sheet is a named table inside a workbook.
type Sheet struct {
	Name string
	Table
}

// Column returns the index of the first header equal to name, ignoring case
// and surrounding space, or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

// Value returns row[col], or "" when the row is short or col is negative.
func Value(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Read loads the first sheet of an .xlsx file or a whole .csv file. Blank
// rows are dropped.
func Read(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv":
		return readCSV(path)
	}
	return Table{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
}

func readXLSX(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return fromRows(rows), nil
}

func readCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) Table {
	var t Table
	for _, row := range rows {
		if blank(row) {
			continue
		}
		if t.Header == nil {
			t.Header = row
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Write saves t to path, choosing the format from the extension.
func Write(path string, t Table) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return WriteXLSX(path, Sheet{Name: DefaultSheet, Table: t})
	case ".csv":
		return WriteCSV(path, t)
	}
	return fmt.Errorf("%s: %w", path, ErrUnsupported)
}

func WriteCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteXLSX writes each sheet with a bold, frozen header row and columns
// sized to their content.
func WriteXLSX(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, s := range sheets {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(DefaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, s.Table, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, t Table, headerStyle int) error {
	widths := make([]int, len(t.Header))
	write := func(rowNum int, cells []string) error {
		vals := make([]interface{}, len(cells))
		for i, c := range cells {
			vals[i] = cellValue(c)
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], longestLine(c))
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(name, cell, &vals)
	}

	if err := write(1, t.Header); err != nil {
		return err
	}
	if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := write(i+2, row); err != nil {
			return err
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return err
		}
	}
	return f.SetPanes(name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

// cellValue stores canonical integers and decimals as numbers so sorting
// and sums work in the workbook; everything else stays text.
func cellValue(s string) interface{} {
	if n, err := strconv.Atoi(s); err == nil && strconv.Itoa(n) == s {
		return n
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == s {
		return v
	}
	return s
}

func longestLine(s string) int {
	n := 0
	for _, ln := range strings.Split(s, "\n") {
		n = max(n, len([]rune(ln)))
	}
	return n
}
