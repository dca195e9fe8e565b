// Package export writes the working set to a spreadsheet.
//
// The layout is fixed: one sheet (or one CSV table), a header row, then one
// row per lead with the columns name, identifier, phone, email, address,
// website, industry, status and last update. Only the header labels vary.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/leadscout/leadscout/internal/types"
)

// ErrNothingToExport is returned for an empty working set. No file is written.
var ErrNothingToExport = errors.New("no leads to export")

// Format is an output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" and "csv" in any case; "" means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX, "":
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want xlsx or csv)", s)
	}
}

// DefaultPrefix starts every export filename.
const DefaultPrefix = "B2B_Leads"

// DefaultSheet is the worksheet name in xlsx exports.
const DefaultSheet = "Leads"

// Exporter writes leads with a given set of header labels.
type Exporter struct {
	Labels Labels
	Sheet  string
}

// New returns an exporter using labels.
func New(labels Labels) (*Exporter, error) {
	if err := labels.Validate(); err != nil {
		return nil, err
	}
	return &Exporter{Labels: labels, Sheet: DefaultSheet}, nil
}

var defaultExporter = &Exporter{Labels: LabelsEN, Sheet: DefaultSheet}

// Write writes leads to w with English headers.
func Write(w io.Writer, leads []*types.Lead, format Format) error {
	return defaultExporter.Write(w, leads, format)
}

// ToFile writes leads into dir with English headers; see Exporter.ToFile.
func ToFile(dir, prefix string, leads []*types.Lead, format Format, now time.Time) (string, error) {
	return defaultExporter.ToFile(dir, prefix, leads, format, now)
}

// FileName returns "<prefix>_<YYYY-MM-DD>.<format>".
func FileName(prefix string, format Format, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("2006-01-02"), format)
}

// Write writes leads to w. An empty slice yields ErrNothingToExport and
// nothing is written.
func (e *Exporter) Write(w io.Writer, leads []*types.Lead, format Format) error {
	rows := leadRows(leads)
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	switch format {
	case FormatXLSX:
		return e.writeXLSX(w, rows)
	case FormatCSV:
		return e.writeCSV(w, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ToFile writes leads to dir/FileName(prefix, format, now) and returns the
// path. An existing file of the same name is replaced. The file is only
// created once the whole export has been rendered.
func (e *Exporter) ToFile(dir, prefix string, leads []*types.Lead, format Format, now time.Time) (string, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, leads, format); err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(prefix, format, now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

// leadRows renders the fixed column order. Nil leads are skipped.
func leadRows(leads []*types.Lead) [][]string {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		if l == nil {
			continue
		}
		updated := ""
		if !l.LastUpdated.IsZero() {
			updated = l.LastUpdated.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			l.Name,
			l.Identifier,
			l.Phone,
			l.Email,
			l.Address,
			l.Website,
			l.Industry,
			string(l.Status),
			updated,
		})
	}
	return rows
}

func (e *Exporter) writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(e.Labels); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = csvCell(cell)
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// csvCell quotes a value that a spreadsheet would otherwise evaluate as a
// formula. XLSX cells are typed as strings and need no escaping.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// columnWidths roughly fit typical values; excelize has no autofit.
var columnWidths = []float64{36, 14, 18, 30, 40, 30, 24, 10, 22}

func (e *Exporter) writeXLSX(w io.Writer, rows [][]string) error {
	sheet := e.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := toCells(e.Labels)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// cells stay strings so registry codes keep leading zeros
		values := toCells(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
