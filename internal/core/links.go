package core

import "github.com/shopspring/decimal"

// LinkVendors ranks each raw material's suppliers in the order they appear in
// its supplier field. Priorities are dense from 1; only priority 1 carries a
// price (the item's cost).
//
// Names that do not resolve to a vendor are skipped, and a vendor listed
// twice for the same item is linked once. Neither consumes a priority.
func LinkVendors(items []Item, vendors []Vendor) ([]ItemVendorLink, []Diagnostic) {
	index := vendorIndex(vendors)

	var (
		links []ItemVendorLink
		diags []Diagnostic
	)
	for _, item := range items {
		if item.Suppliers == "" {
			continue
		}
		linked := make(map[string]struct{})
		priority := 0
		for _, name := range SplitVendors(item.Suppliers) {
			code, ok := index[name]
			if !ok {
				diags = append(diags, diagf(DiagUnresolvedVendor, SheetRawMaterials, item.SourceRow,
					"vendor %q for item %s is unknown; link skipped", name, item.Code))
				continue
			}
			if _, dup := linked[code]; dup {
				diags = append(diags, diagf(DiagDuplicateVendor, SheetRawMaterials, item.SourceRow,
					"vendor %s listed more than once for item %s", code, item.Code))
				continue
			}
			linked[code] = struct{}{}
			priority++

			link := ItemVendorLink{
				ItemCode:   item.Code,
				VendorCode: code,
				Priority:   priority,
			}
			if priority == 1 {
				link.UnitPrice = item.UnitCost
				if !link.UnitPrice.Valid {
					link.UnitPrice = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
				}
			}
			links = append(links, link)
		}
	}
	return links, diags
}
