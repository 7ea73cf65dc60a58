package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/stockimport/internal/core"
)

func TestLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "Steel Rod", "'Steel Rod'"},
		{"quote", "O'Brien's", "'O''Brien''s'"},
		{"true", true, "TRUE"},
		{"false", false, "FALSE"},
		{"int", 2, "2"},
		{"int64", int64(-7), "-7"},
		{"float", 3.5, "3.5"},
		{"whole float", 12.0, "12"},
		{"decimal", decimal.RequireFromString("5.10"), "5.1"},
		{"null decimal", decimal.NullDecimal{}, "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.in)
			if err != nil {
				t.Fatalf("Literal(%v): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Literal(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestLiteral_Unsupported(t *testing.T) {
	if _, err := Literal(struct{}{}); err == nil {
		t.Error("expected error for struct argument")
	}
}

func TestInline(t *testing.T) {
	tests := []struct {
		name  string
		query string
		args  []any
		want  string
	}{
		{"dollar", "SELECT $1, $2", []any{"a", 1}, "SELECT 'a', 1"},
		{"question", "SELECT ?1 WHERE x = ?1", []any{"a"}, "SELECT 'a' WHERE x = 'a'"},
		{"two digits", "SELECT $10", []any{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "SELECT 10"},
		{"quoted placeholder untouched", "SELECT '$1', $1", []any{"x"}, "SELECT '$1', 'x'"},
		{"bare dollar", "SELECT $ FROM t", nil, "SELECT $ FROM t"},
		{"escaped quote in arg", "WHERE name = $1 AND code = $2", []any{"it's", "A"}, "WHERE name = 'it''s' AND code = 'A'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inline(tt.query, tt.args)
			if err != nil {
				t.Fatalf("Inline: %v", err)
			}
			if got != tt.want {
				t.Errorf("Inline = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInline_MissingArgument(t *testing.T) {
	if _, err := Inline("SELECT $2", []any{"a"}); err == nil {
		t.Error("expected error for out-of-range placeholder")
	}
}

func sampleBatch(t *testing.T) core.Batch {
	t.Helper()

	wb := core.Workbook{
		Source: "/tmp/uploads/Stock List.xlsx",
		RawMaterials: []core.Row{
			{Index: 0, Line: 3, Cells: map[string]string{
				core.FieldName: "Steel Rod 10mm", core.FieldUoM: "PCS", core.FieldCost: "5",
				core.FieldSupplier: "Robu / Vyom", core.FieldStock: "12",
			}},
			{Index: 1, Line: 4, Cells: map[string]string{
				core.FieldName: "O'Brien Clip", core.FieldSupplier: "Ghost Vendor, Robu",
			}},
		},
		SubAssemblies: []core.Row{
			{Index: 0, Line: 2, Cells: map[string]string{core.FieldName: "Motor Assembly"}},
		},
		BOM: []core.Row{
			{Index: 0, Line: 3, Cells: map[string]string{
				core.FieldAssembly: "Motor Assembly", core.FieldChild: "Steel Rod 10mm", core.FieldQuantity: "2",
			}},
		},
	}

	svc, err := core.NewService(core.DialectPostgres)
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.Generate(wb)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	res.Batch.RunID = uuid.MustParse("6f1c2b1e-8a37-4b1c-9d2e-0a1b2c3d4e5f")
	res.Batch.GeneratedAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	res.Batch.Warnings = append(res.Batch.Warnings, core.Diagnostic{
		Kind: core.DiagUnresolvedVendor, Sheet: core.SheetRawMaterials, Line: 4, Message: "line one\nline two",
	})
	return res.Batch
}

var placeholder = regexp.MustCompile(`[$?]\d+`)

func TestRender(t *testing.T) {
	b := sampleBatch(t)

	var buf bytes.Buffer
	if err := Render(&buf, b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"-- Run ID:       6f1c2b1e-8a37-4b1c-9d2e-0a1b2c3d4e5f",
		"-- Generated at: 2026-03-01T09:30:00Z",
		"-- Source:       Stock List.xlsx",
		"-- Dialect:      postgres",
		"BEGIN;\n",
		"COMMIT;\n",
		"'O''Brien Clip'",
		"-- Verification",
		"-- " + core.QueryEntityCounts,
		"-- " + core.QueryMultiVendor,
		"line one line two",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("script missing %q", want)
		}
	}

	body := out[strings.Index(out, "BEGIN;"):strings.Index(out, "COMMIT;")]
	if m := placeholder.FindString(body); m != "" {
		t.Errorf("unsubstituted placeholder %q in script body", m)
	}
	if got := strings.Count(body, "INSERT INTO"); got != len(b.Statements) {
		t.Errorf("INSERT count = %d, want %d", got, len(b.Statements))
	}
	if strings.Index(out, "BEGIN;") > strings.Index(out, "INSERT INTO") {
		t.Error("BEGIN must precede the first statement")
	}
	if strings.Index(out, "COMMIT;") > strings.Index(out, "-- Verification") {
		t.Error("verification queries must follow COMMIT")
	}

	sum, err := Checksum(b)
	if err != nil {
		t.Fatal(err)
	}
	if want := fmt.Sprintf("xxh3:%016x", sum); !strings.Contains(out, want) {
		t.Errorf("script missing checksum %s", want)
	}
}

func TestRender_Deterministic(t *testing.T) {
	b := sampleBatch(t)

	var first, second bytes.Buffer
	if err := Render(&first, b); err != nil {
		t.Fatal(err)
	}
	if err := Render(&second, b); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Error("rendering the same batch twice should produce identical scripts")
	}
}

func TestRender_SQLite(t *testing.T) {
	b := sampleBatch(t)
	b.Statements = core.Emit(core.Build(core.Workbook{RawMaterials: []core.Row{
		{Cells: map[string]string{core.FieldName: "Bolt", core.FieldSupplier: "Acme"}},
	}}), core.SQLite).Statements

	var buf bytes.Buffer
	if err := Render(&buf, b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(buf.String(), "?1") {
		t.Error("sqlite placeholders should be inlined")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.sql")

	if err := WriteFile(path, sampleBatch(t)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("-- Inventory import")) {
		t.Errorf("unexpected script prefix: %q", data[:40])
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the script", len(entries))
	}
}

func TestWriteFile_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "import.sql")

	b := sampleBatch(t)
	b.Statements = append(b.Statements, core.Statement{
		Entity: core.EntityItem, SQL: "SELECT $1", Args: []any{struct{}{}},
	})

	err := WriteFile(path, b)
	if err == nil || !strings.Contains(err.Error(), "write script") {
		t.Fatalf("err = %v, want write script error", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir has %d entries after failed write, want 0", len(entries))
	}
}
