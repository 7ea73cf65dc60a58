// Package workbook reads the inventory workbook into core rows.
//
// The reader resolves every sheet and header through a config.Layout, so a
// workbook with renamed tabs or columns can be imported with a layout file
// instead of a code change. Cells are read as raw values; all cleaning
// happens in the core normalizer.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/stockimport/internal/config"
	"github.com/JonMunkholm/stockimport/internal/core"
	"github.com/JonMunkholm/stockimport/internal/schema"
)

var (
	// ErrSheetNotFound is returned when a layout sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrMissingColumns is returned when a header row lacks required columns.
	ErrMissingColumns = core.ErrMissingColumns
)

// Read parses an .xlsx stream using the given layout.
func Read(r io.Reader, layout config.Layout) (core.Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return core.Workbook{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var wb core.Workbook
	for _, sheet := range schema.Sheets(layout) {
		rows, err := readSheet(f, sheet)
		if err != nil {
			return core.Workbook{}, err
		}
		switch sheet.Key {
		case core.SheetRawMaterials:
			wb.RawMaterials = rows
		case core.SheetSubAssemblies:
			wb.SubAssemblies = rows
		case core.SheetBOM:
			wb.BOM = rows
		}
	}
	return wb, nil
}

// SheetNames lists the worksheets of an .xlsx stream.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func readSheet(f *excelize.File, sheet schema.Sheet) ([]core.Row, error) {
	name, ok := findSheet(f.GetSheetList(), sheet.Layout.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet.Layout.Name)
	}

	records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	headerRow := sheet.Layout.HeaderRow
	var headers []string
	if headerRow <= len(records) {
		headers = records[headerRow-1]
	}

	idx, err := core.ValidateHeaders(headers, sheet.Fields)
	if err != nil {
		return nil, fmt.Errorf("sheet %q (header row %d): %w", name, headerRow, err)
	}

	if headerRow >= len(records) {
		return nil, nil
	}
	data := records[headerRow:]
	rows := make([]core.Row, 0, len(data))
	for i, record := range data {
		rows = append(rows, core.Row{
			Index: i,
			Line:  headerRow + i + 1,
			Cells: idx.Extract(record, sheet.Fields),
		})
	}
	return rows, nil
}

// findSheet matches a sheet name case-insensitively, ignoring surrounding
// whitespace. An exact match wins over a folded one.
func findSheet(names []string, want string) (string, bool) {
	for _, n := range names {
		if n == want {
			return n, true
		}
	}
	want = strings.TrimSpace(want)
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), want) {
			return n, true
		}
	}
	return "", false
}
