package core

// convert.go normalizes raw workbook cells.
//
// Workbook cells arrive as text regardless of how the sheet stored them:
//   - Numbers may carry currency symbols and thousands separators
//   - Accounting negatives are written as "(12.50)"
//   - Blank cells, whitespace-only cells and "nan" placeholders mean absent
//
// The Clean* functions return values with Valid=false for absent or
// unparsable input so callers can apply their own defaults.

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// groupedRegex matches comma thousands grouping such as "1,234,567.8".
var groupedRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// currencySymbols are stripped before numeric parsing.
var currencySymbols = []string{"$", "€", "£", "₹", "Rs."}

// CleanString trims a cell. Blank and whitespace-only cells are absent.
func CleanString(raw string) pgtype.Text {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// CleanNumber parses a numeric cell. Blank, non-numeric and non-finite
// values are absent.
func CleanNumber(raw string) pgtype.Float8 {
	s, ok := numericText(raw)
	if !ok {
		return pgtype.Float8{Valid: false}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// CleanDecimal parses a money cell without passing through float64.
func CleanDecimal(raw string) decimal.NullDecimal {
	s, ok := numericText(raw)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// numericText strips currency, separators and accounting parentheses and
// reports whether the remainder looks like a number.
func numericText(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// Only thousands grouping; "2,5" is not a number.
		if !groupedRegex.MatchString(s) {
			return "", false
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// TextOr returns the text value or def when absent.
func TextOr(t pgtype.Text, def string) string {
	if !t.Valid {
		return def
	}
	return t.String
}

// FloatOr returns the float value or def when absent.
func FloatOr(f pgtype.Float8, def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Float64
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		// First occurrence wins when a header repeats.
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a header cell:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
// - Collapses embedded line breaks
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	s = strings.Join(strings.Fields(s), " ")

	return s
}
