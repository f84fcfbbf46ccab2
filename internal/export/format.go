package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/p-n-ai/feedback-export/internal/platform/config"
)

// Format serializes a Table.
type Format interface {
	Extension() string
	Write(w io.Writer, t *Table) error
}

// FormatFor returns the format registered under name.
func FormatFor(name string, bom bool) (Format, error) {
	switch strings.ToLower(name) {
	case "", config.FormatCSV:
		return CSV{BOM: bom}, nil
	case config.FormatXLSX:
		return XLSX{}, nil
	case config.FormatJSON:
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", name)
	}
}

// CSV writes comma separated values. BOM prefixes a UTF-8 byte order mark so
// spreadsheet applications detect the encoding.
type CSV struct {
	BOM bool
}

func (CSV) Extension() string { return "csv" }

func (c CSV) Write(w io.Writer, t *Table) error {
	var bomWriter *transform.Writer
	if c.BOM {
		bomWriter = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		w = bomWriter
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	if bomWriter != nil {
		return bomWriter.Close()
	}
	return nil
}

// XLSX writes a single-sheet workbook with a bold header row.
type XLSX struct{}

func (XLSX) Extension() string { return "xlsx" }

func (XLSX) Write(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, t.Columns); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// sheetName makes title acceptable as a worksheet name.
func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		return "Responses"
	}
	if runes := []rune(name); len(runes) > 31 {
		name = string(runes[:31])
	}
	return name
}

// JSON writes the table as {"title", "columns", "rows"}.
type JSON struct{}

func (JSON) Extension() string { return "json" }

func (JSON) Write(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Title   string     `json:"title"`
		Columns []string   `json:"columns"`
		Rows    [][]string `json:"rows"`
	}{t.Title, t.Columns, t.Rows})
}
