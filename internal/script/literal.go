package script

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Literal encodes a statement argument as a SQL literal. Strings are
// single-quoted with embedded quotes doubled.
func Literal(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("non-finite number %v", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case decimal.Decimal:
		return v.String(), nil
	case decimal.NullDecimal:
		if !v.Valid {
			return "NULL", nil
		}
		return v.Decimal.String(), nil
	default:
		return "", fmt.Errorf("unsupported argument type %T", v)
	}
}

// Inline replaces $n or ?n placeholders outside quoted text with the
// literal form of args[n-1].
func Inline(query string, args []any) (string, error) {
	var b strings.Builder
	b.Grow(len(query) + 16*len(args))

	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
			b.WriteByte(c)
			continue
		}
		if inQuote || (c != '$' && c != '?') {
			b.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}

		n, err := strconv.Atoi(query[i+1 : j])
		if err != nil || n < 1 || n > len(args) {
			return "", fmt.Errorf("placeholder %s has no argument (%d given)", query[i:j], len(args))
		}
		lit, err := Literal(args[n-1])
		if err != nil {
			return "", fmt.Errorf("placeholder %s: %w", query[i:j], err)
		}
		b.WriteString(lit)
		i = j - 1
	}

	if inQuote {
		return "", fmt.Errorf("unterminated quoted string")
	}
	return b.String(), nil
}
