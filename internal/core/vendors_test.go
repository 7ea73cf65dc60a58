package core

import (
	"reflect"
	"testing"
)

func TestSplitVendors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "Robu / Vyom", want: []string{"Robu", "Vyom"}},
		{input: "A, B/C", want: []string{"A", "B", "C"}},
		{input: "Robu", want: []string{"Robu"}},
		{input: " / , ", want: []string{}},
		{input: "", want: []string{}},
		{input: "Vyom//Robu,", want: []string{"Vyom", "Robu"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SplitVendors(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitVendors(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func supplierRows(fields ...string) []Row {
	rows := make([]Row, len(fields))
	for i, f := range fields {
		rows[i] = Row{Index: i, Line: i + 3, Cells: map[string]string{FieldSupplier: f}}
	}
	return rows
}

func TestExtractVendors(t *testing.T) {
	rows := supplierRows("Vyom / Robu", "", "Robu, Amazon", "nan")

	vendors, diags := ExtractVendors(rows, FieldSupplier)

	want := []Vendor{
		{Code: "AMAZON", Name: "Amazon"},
		{Code: "ROBU", Name: "Robu"},
		{Code: "VYOM", Name: "Vyom"},
	}
	if !reflect.DeepEqual(vendors, want) {
		t.Errorf("ExtractVendors = %+v, want %+v", vendors, want)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestExtractVendors_EmptyCodeFallback(t *testing.T) {
	vendors, diags := ExtractVendors(supplierRows("***", "Robu"), FieldSupplier)

	// "***" sorts before "Robu" and takes position 1.
	if vendors[0].Code != "VENDOR-0001" {
		t.Errorf("fallback code = %q, want VENDOR-0001", vendors[0].Code)
	}
	if got := CountDiagnostics(diags)[DiagEmptyVendorCode]; got != 1 {
		t.Errorf("empty code diagnostics = %d, want 1", got)
	}
}

func TestExtractVendors_CollisionReported(t *testing.T) {
	vendors, diags := ExtractVendors(supplierRows("Robu", "ROBU"), FieldSupplier)

	if len(vendors) != 2 {
		t.Fatalf("len(vendors) = %d, want 2", len(vendors))
	}
	if vendors[0].Code != vendors[1].Code {
		t.Errorf("expected shared code, got %q and %q", vendors[0].Code, vendors[1].Code)
	}
	if got := CountDiagnostics(diags)[DiagCodeCollision]; got != 1 {
		t.Errorf("collision diagnostics = %d, want 1", got)
	}
}
