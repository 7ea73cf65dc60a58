package core

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func samplePlan() *Plan {
	return Build(Workbook{
		Source: "stock.xlsx",
		RawMaterials: []Row{
			rawMaterial(0, "Steel Rod 10mm", "", "5", "Robu / Vyom", "12"),
			rawMaterial(1, "Bolt M8", "NOS", "0.5", "Robu", ""),
		},
		SubAssemblies: []Row{row(0, FieldName, "Frame")},
		BOM: []Row{
			bomRow(0, "Frame", "Steel Rod 10mm", "2", ""),
			bomRow(1, "", "Bolt M8", "8", "NOS"),
		},
	})
}

func TestEmit_Order(t *testing.T) {
	batch := Emit(samplePlan(), Postgres)

	var got []Entity
	for _, s := range batch.Statements {
		got = append(got, s.Entity)
	}
	want := []Entity{
		EntityVendor, EntityVendor,
		EntityItem, EntityItem, EntityItem,
		EntityItemVendor, EntityItemVendor, EntityItemVendor,
		EntityBOMHeader, EntityBOMItem, EntityBOMItem,
		EntityStock,
	}
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("statement %d entity = %s, want %s", i, got[i], want[i])
		}
	}

	if batch.Count(EntityItem) != 3 {
		t.Errorf("Count(items) = %d, want 3", batch.Count(EntityItem))
	}
	if batch.Dialect != "postgres" || batch.Source != "stock.xlsx" {
		t.Errorf("batch meta = %q %q", batch.Dialect, batch.Source)
	}
}

func TestEmit_StatementsAreGuarded(t *testing.T) {
	batch := Emit(samplePlan(), Postgres)

	for i, s := range batch.Statements {
		if !strings.HasPrefix(s.SQL, "INSERT INTO "+string(s.Entity)) {
			t.Errorf("statement %d does not insert into %s: %s", i, s.Entity, s.SQL)
		}
		if !strings.Contains(s.SQL, "WHERE NOT EXISTS") && !strings.Contains(s.SQL, "AND NOT EXISTS") {
			t.Errorf("statement %d has no NOT EXISTS guard", i)
		}
		if strings.Contains(s.SQL, "%!") || strings.Contains(s.SQL, "NULL,") {
			t.Errorf("statement %d has a bad enum literal: %s", i, s.SQL)
		}
	}
}

func TestEmit_Args(t *testing.T) {
	batch := Emit(samplePlan(), Postgres)

	vendor := batch.Statements[0]
	if len(vendor.Args) != 2 || vendor.Args[0] != "ROBU" || vendor.Args[1] != "Robu" {
		t.Errorf("vendor args = %v", vendor.Args)
	}

	item := batch.Statements[2]
	if !strings.Contains(item.SQL, "'RAW_MATERIAL'") {
		t.Errorf("item SQL missing category literal: %s", item.SQL)
	}
	if d, ok := item.Args[3].(decimal.Decimal); !ok || d.String() != "5" {
		t.Errorf("item price arg = %#v, want decimal 5", item.Args[3])
	}

	sa := batch.Statements[4]
	if !strings.Contains(sa.SQL, "'SUB_ASSEMBLY'") || sa.Args[3] != nil {
		t.Errorf("sub-assembly statement = %s %v", sa.SQL, sa.Args)
	}

	link2 := batch.Statements[6]
	if link2.Args[2] != 2 || link2.Args[3] != nil {
		t.Errorf("priority 2 link args = %v", link2.Args)
	}

	header := batch.Statements[8]
	if header.Args[0] != "BOM-FRAME" || header.Args[1] != "FRAME" || header.Args[2] != "1.0" || header.Args[3] != false {
		t.Errorf("header args = %v", header.Args)
	}
	if !strings.Contains(header.SQL, "'ACTIVE'") {
		t.Errorf("header SQL missing status literal")
	}

	stock := batch.Statements[11]
	if stock.Args[0] != "STEEL-ROD-10MM" || stock.Args[1] != 12.0 {
		t.Errorf("stock args = %v", stock.Args)
	}
	for _, lit := range []string{"'IN'", "'OPENING_STOCK'", "'INITIAL-IMPORT'"} {
		if !strings.Contains(stock.SQL, lit) {
			t.Errorf("stock SQL missing %s", lit)
		}
	}
}

func TestEmit_SQLiteRebind(t *testing.T) {
	batch := Emit(samplePlan(), SQLite)

	for i, s := range batch.Statements {
		if strings.Contains(s.SQL, "$") {
			t.Errorf("statement %d still has $ placeholders: %s", i, s.SQL)
		}
	}
	if !strings.Contains(batch.Statements[0].SQL, "CAST(?1 AS TEXT)") {
		t.Errorf("vendor SQL = %s", batch.Statements[0].SQL)
	}
	if batch.Verification[1].Name != QueryMultiVendor || !strings.Contains(batch.Verification[1].SQL, "GROUP_CONCAT") {
		t.Errorf("sqlite multi-vendor query = %+v", batch.Verification[1])
	}
}

func TestEmit_Verification(t *testing.T) {
	batch := Emit(samplePlan(), Postgres)

	if len(batch.Verification) != 2 {
		t.Fatalf("len(Verification) = %d, want 2", len(batch.Verification))
	}
	counts := batch.Verification[0]
	for _, label := range []string{"Vendors", "Items (RM)", "Items (SA)", "Item-Vendor Links", "BOMs", "BOM Items", "Stock Entries"} {
		if !strings.Contains(counts.SQL, "'"+label+"'") {
			t.Errorf("entity counts query missing %q", label)
		}
	}
	multi := batch.Verification[1].SQL
	if !strings.Contains(multi, "STRING_AGG") || !strings.Contains(multi, "LIMIT 20") ||
		!strings.Contains(multi, "ORDER BY vendor_count DESC, i.name") {
		t.Errorf("postgres multi-vendor query = %s", multi)
	}
}

func TestDialectByName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "postgres"},
		{in: "Postgres", want: "postgres"},
		{in: "pg", want: "postgres"},
		{in: "sqlite", want: "sqlite"},
		{in: "sqlite3", want: "sqlite"},
		{in: "mysql", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := DialectByName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.want)
			}
		})
	}
}
