package core

import (
	"fmt"
	"path/filepath"
)

// Plan is everything derived from one workbook, in emission order.
type Plan struct {
	Source        string           `json:"source"`
	Vendors       []Vendor         `json:"vendors"`
	RawMaterials  []Item           `json:"rawMaterials"`
	SubAssemblies []Item           `json:"subAssemblies"`
	Links         []ItemVendorLink `json:"links"`
	BOMs          []BOM            `json:"boms"`
	Stock         []StockEntry     `json:"stock"`
	Diagnostics   []Diagnostic     `json:"diagnostics"`
}

// Summary counts the entities in a plan.
type Summary struct {
	Vendors       int `json:"vendors"`
	RawMaterials  int `json:"rawMaterials"`
	SubAssemblies int `json:"subAssemblies"`
	Links         int `json:"links"`
	BOMs          int `json:"boms"`
	BOMLines      int `json:"bomLines"`
	StockEntries  int `json:"stockEntries"`
	Warnings      int `json:"warnings"`
}

// Build runs the pipeline over a workbook. It never fails: malformed input
// turns into defaults, skipped rows and diagnostics.
func Build(wb Workbook) *Plan {
	p := &Plan{Source: wb.Source}

	vendors, diags := ExtractVendors(wb.RawMaterials, FieldSupplier)
	p.Vendors = vendors
	p.Diagnostics = append(p.Diagnostics, diags...)

	catalog := BuildCatalog(wb.RawMaterials, wb.SubAssemblies)
	p.RawMaterials = catalog.RawMaterials
	p.SubAssemblies = catalog.SubAssemblies
	p.Diagnostics = append(p.Diagnostics, catalog.Diagnostics()...)

	links, diags := LinkVendors(catalog.RawMaterials, vendors)
	p.Links = links
	p.Diagnostics = append(p.Diagnostics, diags...)

	boms, diags := AssembleBOMs(wb.BOM, catalog)
	p.BOMs = boms
	p.Diagnostics = append(p.Diagnostics, diags...)

	p.Stock = OpeningStock(catalog.RawMaterials, StockNote(wb.Source))

	return p
}

// OpeningStock returns one IN movement per item with positive stock.
func OpeningStock(items []Item, notes string) []StockEntry {
	var entries []StockEntry
	for _, item := range items {
		if item.OpeningStock <= 0 {
			continue
		}
		entries = append(entries, StockEntry{
			ItemCode:        item.Code,
			Quantity:        item.OpeningStock,
			TransactionType: StockTransactionIn,
			ReferenceType:   StockReferenceType,
			ReferenceNumber: StockReferenceNumber,
			Notes:           notes,
		})
	}
	return entries
}

// StockNote is the note attached to opening stock entries.
func StockNote(source string) string {
	if source == "" {
		return "Imported from workbook"
	}
	return fmt.Sprintf("Imported from %s", filepath.Base(source))
}

// Summary returns entity counts for the plan.
func (p *Plan) Summary() Summary {
	s := Summary{
		Vendors:       len(p.Vendors),
		RawMaterials:  len(p.RawMaterials),
		SubAssemblies: len(p.SubAssemblies),
		Links:         len(p.Links),
		BOMs:          len(p.BOMs),
		StockEntries:  len(p.Stock),
		Warnings:      len(p.Diagnostics),
	}
	for _, b := range p.BOMs {
		s.BOMLines += len(b.Lines)
	}
	return s
}

// Empty reports whether the plan would emit no statements.
func (p *Plan) Empty() bool {
	return len(p.Vendors) == 0 &&
		len(p.RawMaterials) == 0 &&
		len(p.SubAssemblies) == 0 &&
		len(p.BOMs) == 0
}
