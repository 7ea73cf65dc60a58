package core

import "testing"

func TestBuild_EndToEnd(t *testing.T) {
	wb := Workbook{
		Source:       "/data/Stock List 2024-2025.xlsx",
		RawMaterials: []Row{rawMaterial(0, "Steel Rod 10mm", "", "5", "Robu / Vyom", "12")},
	}

	p := Build(wb)

	if len(p.Vendors) != 2 || p.Vendors[0].Code != "ROBU" || p.Vendors[1].Code != "VYOM" {
		t.Errorf("vendors = %+v", p.Vendors)
	}
	if len(p.RawMaterials) != 1 {
		t.Fatalf("len(RawMaterials) = %d, want 1", len(p.RawMaterials))
	}
	item := p.RawMaterials[0]
	if item.Code != "STEEL-ROD-10MM" || item.Category != CategoryRawMaterial {
		t.Errorf("item = %+v", item)
	}

	if len(p.Links) != 2 {
		t.Fatalf("len(Links) = %d, want 2", len(p.Links))
	}
	if l := p.Links[0]; l.VendorCode != "ROBU" || l.Priority != 1 || l.UnitPrice.Decimal.String() != "5" {
		t.Errorf("links[0] = %+v", l)
	}
	if l := p.Links[1]; l.VendorCode != "VYOM" || l.Priority != 2 || l.UnitPrice.Valid {
		t.Errorf("links[1] = %+v", l)
	}

	if len(p.Stock) != 1 {
		t.Fatalf("len(Stock) = %d, want 1", len(p.Stock))
	}
	s := p.Stock[0]
	if s.ItemCode != "STEEL-ROD-10MM" || s.Quantity != 12 {
		t.Errorf("stock = %+v", s)
	}
	if s.TransactionType != "IN" || s.ReferenceType != "OPENING_STOCK" || s.ReferenceNumber != "INITIAL-IMPORT" {
		t.Errorf("stock reference = %+v", s)
	}
	if s.Notes != "Imported from Stock List 2024-2025.xlsx" {
		t.Errorf("stock notes = %q", s.Notes)
	}
	if len(p.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", p.Diagnostics)
	}
}

func TestBuild_ZeroStockHasNoEntry(t *testing.T) {
	for _, stock := range []string{"0", "", "-3", "abc"} {
		t.Run(stock, func(t *testing.T) {
			p := Build(Workbook{
				RawMaterials: []Row{rawMaterial(0, "Steel Rod 10mm", "", "5", "", stock)},
			})
			if len(p.Stock) != 0 {
				t.Errorf("stock %q produced %d entries", stock, len(p.Stock))
			}
		})
	}
}

func TestBuild_Summary(t *testing.T) {
	wb := Workbook{
		RawMaterials: []Row{
			rawMaterial(0, "x", "", "1", "Robu", "2"),
			rawMaterial(1, "y", "", "1", "Robu / Vyom", ""),
		},
		SubAssemblies: []Row{row(0, FieldName, "A")},
		BOM: []Row{
			bomRow(0, "A", "x", "1", ""),
			bomRow(1, "", "y", "1", ""),
		},
	}

	got := Build(wb).Summary()
	want := Summary{
		Vendors:       2,
		RawMaterials:  2,
		SubAssemblies: 1,
		Links:         3,
		BOMs:          1,
		BOMLines:      2,
		StockEntries:  1,
	}
	if got != want {
		t.Errorf("Summary = %+v, want %+v", got, want)
	}
}

func TestPlan_Empty(t *testing.T) {
	if !Build(Workbook{}).Empty() {
		t.Error("empty workbook should give an empty plan")
	}
	p := Build(Workbook{SubAssemblies: []Row{row(0, FieldName, "A")}})
	if p.Empty() {
		t.Error("plan with a sub-assembly should not be empty")
	}
}

func TestStockNote(t *testing.T) {
	tests := map[string]string{
		"":                            "Imported from workbook",
		"stock.xlsx":                  "Imported from stock.xlsx",
		"s3://bucket/imports/q1.xlsx": "Imported from q1.xlsx",
	}
	for in, want := range tests {
		if got := StockNote(in); got != want {
			t.Errorf("StockNote(%q) = %q, want %q", in, got, want)
		}
	}
}
