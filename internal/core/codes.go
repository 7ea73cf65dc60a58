package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Code length limits enforced by the target schema.
const (
	MaxVendorCodeLen = 20
	MaxItemCodeLen   = 50

	// Item codes keep at most this many words of the name.
	itemCodeWords = 3
)

// Fallback index offsets keep generated ITEM-#### codes for different
// sheets from overlapping.
const (
	RawMaterialFallbackOffset = 1
	SubAssemblyFallbackOffset = 1000
	AssemblyFallbackOffset    = 2000
	ChildFallbackOffset       = 3000
)

var (
	nonAlnum      = regexp.MustCompile(`[^A-Za-z0-9]`)
	nonAlnumSpace = regexp.MustCompile(`[^A-Za-z0-9\s]`)
)

// fold strips diacritics so "Café" codes as "CAFE" instead of "CAF".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// plainSpaces turns Unicode whitespace (NBSP and friends, common in
// spreadsheet text) into ASCII spaces so it still separates words.
func plainSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

// VendorCode derives a vendor code from its name: uppercase, spaces become
// underscores, everything outside [A-Z0-9] is dropped, and the result is
// truncated. The result may be empty for names with no letters or digits.
func VendorCode(name string) string {
	s := strings.ToUpper(fold(name))
	s = strings.ReplaceAll(s, " ", "_")
	s = nonAlnum.ReplaceAllString(s, "")
	return truncate(s, MaxVendorCodeLen)
}

// ItemCode derives an item code from the first three words of the name,
// uppercased and joined by '-'. Names with no usable words get
// ITEM-<fallbackIndex>.
func ItemCode(name string, fallbackIndex int) string {
	s := nonAlnumSpace.ReplaceAllString(plainSpaces(fold(name)), "")
	words := strings.Fields(strings.ToUpper(s))
	if len(words) == 0 {
		return FallbackItemCode(fallbackIndex)
	}
	if len(words) > itemCodeWords {
		words = words[:itemCodeWords]
	}
	return truncate(strings.Join(words, "-"), MaxItemCodeLen)
}

// FallbackItemCode formats the code used for nameless items.
func FallbackItemCode(index int) string {
	return fmt.Sprintf("ITEM-%04d", index)
}

// FallbackVendorCode formats the code used for vendors whose name yields no
// usable characters.
func FallbackVendorCode(index int) string {
	return fmt.Sprintf("VENDOR-%04d", index)
}

// BOMNumber returns the BOM number for an assembly code.
func BOMNumber(parentCode string) string {
	return BOMNumberPrefix + parentCode
}

// truncate cuts s to at most n bytes. Codes are ASCII after stripping.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
