package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLayout(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	return path
}

func TestLoadLayout_Defaults(t *testing.T) {
	layout, err := LoadLayout("")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if !reflect.DeepEqual(layout, DefaultLayout()) {
		t.Errorf("layout = %+v, want defaults", layout)
	}
	if layout.RawMaterials.Name != "RM" || layout.RawMaterials.HeaderRow != 2 {
		t.Errorf("raw materials = %+v", layout.RawMaterials)
	}
	if layout.SubAssemblies.Name != "CombineSFG" || layout.SubAssemblies.HeaderRow != 1 {
		t.Errorf("sub-assemblies = %+v", layout.SubAssemblies)
	}
	if layout.BOM.Name != "S-BOM" || layout.BOM.HeaderRow != 2 {
		t.Errorf("bom = %+v", layout.BOM)
	}
}

func TestLoadLayout_Overrides(t *testing.T) {
	path := writeLayout(t, `
raw_materials:
  name: Raw Materials
  header_row: 1
  columns:
    stock: Opening Qty
bom:
  name: BOM
`)

	layout, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}

	if layout.RawMaterials.Name != "Raw Materials" || layout.RawMaterials.HeaderRow != 1 {
		t.Errorf("raw materials = %+v", layout.RawMaterials)
	}
	if got := layout.RawMaterials.Header("stock", "Current Stock"); got != "Opening Qty" {
		t.Errorf("Header(stock) = %q, want Opening Qty", got)
	}
	if got := layout.RawMaterials.Header("cost", "COST"); got != "COST" {
		t.Errorf("Header(cost) = %q, want default COST", got)
	}
	// Unlisted keys keep their defaults.
	if layout.BOM.Name != "BOM" || layout.BOM.HeaderRow != 2 {
		t.Errorf("bom = %+v", layout.BOM)
	}
	if !reflect.DeepEqual(layout.SubAssemblies, DefaultLayout().SubAssemblies) {
		t.Errorf("sub-assemblies = %+v, want defaults", layout.SubAssemblies)
	}
}

func TestLoadLayout_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "bad yaml", body: "raw_materials: [", wantErr: "parse layout"},
		{name: "zero header row", body: "bom:\n  header_row: 0\n", wantErr: "bom.header_row"},
		{name: "blank sheet name", body: "raw_materials:\n  name: \"  \"\n", wantErr: "raw_materials.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLayout(writeLayout(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadLayout error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLayout_MissingFile(t *testing.T) {
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
