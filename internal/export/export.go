// Package export writes a table to CSV or XLSX.
//
// Both formats put the column names in the first row and one row per record
// after it, in the table's column order.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/xuri/excelize/v2"
)

// Content types for HTTP responses.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// WriteCSV writes columns and rows to w as CSV.
func WriteCSV(w io.Writer, columns []string, rows []grid.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, r := range rows {
		if err := cw.Write(r.Values(columns)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes columns and rows to w as a single-sheet workbook named
// after table. The header row is bold and frozen.
func WriteXLSX(w io.Writer, table string, columns []string, rows []grid.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(table)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := setRow(f, sheet, 1, columns); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+2, r.Values(columns)); err != nil {
			return err
		}
	}

	if len(columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("freeze header: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
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

// SheetName derives a valid worksheet name from a table id.
func SheetName(table string) string {
	name := strings.TrimPrefix(table, grid.TablePrefix)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '?', '*', ':', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

// FileName returns a download name for table in the given extension.
func FileName(table, ext string) string {
	return SheetName(table) + "." + ext
}
