package core

import "testing"

func TestLinkVendors(t *testing.T) {
	vendors := []Vendor{
		{Code: "AMAZON", Name: "Amazon"},
		{Code: "ROBU", Name: "Robu"},
		{Code: "VYOM", Name: "Vyom"},
	}
	items := BuildCatalog([]Row{
		rawMaterial(0, "Steel Rod 10mm", "", "5", "Robu / Vyom", ""),
		rawMaterial(1, "Copper Wire", "", "2.75", "Vyom, Ghost / Amazon, Vyom", ""),
		rawMaterial(2, "Tape", "", "1", "", ""),
	}, nil).RawMaterials

	links, diags := LinkVendors(items, vendors)

	type want struct {
		item, vendor string
		priority     int
		price        string // "" means absent
	}
	wants := []want{
		{"STEEL-ROD-10MM", "ROBU", 1, "5"},
		{"STEEL-ROD-10MM", "VYOM", 2, ""},
		{"COPPER-WIRE", "VYOM", 1, "2.75"},
		{"COPPER-WIRE", "AMAZON", 2, ""},
	}
	if len(links) != len(wants) {
		t.Fatalf("len(links) = %d, want %d: %+v", len(links), len(wants), links)
	}
	for i, w := range wants {
		l := links[i]
		if l.ItemCode != w.item || l.VendorCode != w.vendor || l.Priority != w.priority {
			t.Errorf("links[%d] = %+v, want %+v", i, l, w)
		}
		if w.price == "" && l.UnitPrice.Valid {
			t.Errorf("links[%d] price = %s, want absent", i, l.UnitPrice.Decimal)
		}
		if w.price != "" && (!l.UnitPrice.Valid || l.UnitPrice.Decimal.String() != w.price) {
			t.Errorf("links[%d] price = %+v, want %s", i, l.UnitPrice, w.price)
		}
	}

	counts := CountDiagnostics(diags)
	if counts[DiagUnresolvedVendor] != 1 {
		t.Errorf("unresolved vendor diagnostics = %d, want 1", counts[DiagUnresolvedVendor])
	}
	if counts[DiagDuplicateVendor] != 1 {
		t.Errorf("duplicate vendor diagnostics = %d, want 1", counts[DiagDuplicateVendor])
	}
}

func TestLinkVendors_PrioritiesDense(t *testing.T) {
	vendors, _ := ExtractVendors(supplierRows("A / B / C / D"), FieldSupplier)
	items := BuildCatalog([]Row{rawMaterial(0, "Widget", "", "", "A / B / C / D", "")}, nil).RawMaterials

	links, _ := LinkVendors(items, vendors)

	for i, l := range links {
		if l.Priority != i+1 {
			t.Errorf("links[%d].Priority = %d, want %d", i, l.Priority, i+1)
		}
	}
	if !links[0].UnitPrice.Valid || !links[0].UnitPrice.Decimal.IsZero() {
		t.Errorf("priority 1 price should default to 0, got %+v", links[0].UnitPrice)
	}
}
