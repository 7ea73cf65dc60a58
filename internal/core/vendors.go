package core

import (
	"sort"
	"strings"
)

// SplitVendors splits a multi-valued supplier field on '/' or ',' and
// returns the trimmed, non-empty names in their original order.
//
//	SplitVendors("Robu / Vyom")  // ["Robu", "Vyom"]
//	SplitVendors("A, B/C")       // ["A", "B", "C"]
func SplitVendors(field string) []string {
	parts := strings.FieldsFunc(field, func(r rune) bool {
		return r == '/' || r == ','
	})
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// ExtractVendors collects the distinct vendor names found in the given field
// across all rows, sorted by name, and assigns each a code.
//
// A name that yields an empty code gets VENDOR-<n>, where n is its 1-based
// position in the sorted list. Names that truncate to the same code are
// reported as collisions and both kept; the second insert becomes a no-op.
func ExtractVendors(rows []Row, field string) ([]Vendor, []Diagnostic) {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range rows {
		raw := CleanString(r.Get(field))
		if !raw.Valid {
			continue
		}
		for _, name := range SplitVendors(raw.String) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var diags []Diagnostic
	owners := make(map[string]string, len(names))
	vendors := make([]Vendor, 0, len(names))
	for i, name := range names {
		code := VendorCode(name)
		if code == "" {
			code = FallbackVendorCode(i + 1)
			diags = append(diags, diagf(DiagEmptyVendorCode, SheetRawMaterials, 0,
				"vendor %q has no letters or digits; using code %s", name, code))
		}
		if owner, ok := owners[code]; ok {
			diags = append(diags, diagf(DiagCodeCollision, SheetRawMaterials, 0,
				"vendors %q and %q share code %s", owner, name, code))
		} else {
			owners[code] = name
		}
		vendors = append(vendors, Vendor{Code: code, Name: name})
	}
	return vendors, diags
}

// vendorIndex maps vendor names to codes.
func vendorIndex(vendors []Vendor) map[string]string {
	idx := make(map[string]string, len(vendors))
	for _, v := range vendors {
		idx[v.Name] = v.Code
	}
	return idx
}
