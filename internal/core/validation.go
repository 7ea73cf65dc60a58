package core

// validation.go checks sheet header rows before any data row is read.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumns is wrapped by ValidateHeaders when required columns are
// absent from a header row.
var ErrMissingColumns = errors.New("missing required columns")

// ValidateHeaders validates that all required columns exist in the header
// row. Returns the header index, or an error listing every missing column.
func ValidateHeaders(headers []string, specs []FieldSpec) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range specs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(CleanCell(spec.Header))]; !ok {
			missing = append(missing, spec.Header)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return idx, nil
}

// Position returns the column position for a field spec.
func (h HeaderIndex) Position(spec FieldSpec) (int, bool) {
	pos, ok := h[strings.ToLower(CleanCell(spec.Header))]
	return pos, ok
}

// Extract maps a data row onto logical field keys. Cells beyond the end of
// the record, and optional columns absent from the header, are left out.
func (h HeaderIndex) Extract(record []string, specs []FieldSpec) map[string]string {
	cells := make(map[string]string, len(specs))
	for _, spec := range specs {
		pos, ok := h.Position(spec)
		if !ok || pos >= len(record) {
			continue
		}
		cells[spec.Key] = record[pos]
	}
	return cells
}
